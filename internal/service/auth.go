package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"

	"blocktek-radio/internal/models"
	"blocktek-radio/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService interface {
	Register(email, password string) (*models.User, *models.Session, error)
	Login(email, password string) (*models.User, *models.Session, error)
	Logout(token string) error
	ResolveSession(token string) (*models.User, error)
	UpdateProfile(caller *models.User, input models.UpdateProfileInput) (*models.User, error)
	EnsureAdmin(email, password string) error
	SessionTTL() time.Duration
}

type authService struct {
	repo       repository.AuthRepository
	logger     *zap.Logger
	sessionTTL time.Duration
}

func NewAuthService(repo repository.AuthRepository, sessionTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		repo:       repo,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}

func (s *authService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *authService) Register(email, password string) (*models.User, *models.Session, error) {
	existing, err := s.repo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UnixMilli()
	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  strings.SplitN(email, "@", 2)[0],
		Role:         models.RoleListener,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User registered", zap.String("email", user.Email), zap.Int64("id", user.ID))
	return user, session, nil
}

func (s *authService) Login(email, password string) (*models.User, *models.Session, error) {
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	// Unknown email and bad password are indistinguishable to the caller.
	if user == nil || !verifyPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in", zap.String("email", user.Email))
	return user, session, nil
}

func (s *authService) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(token)
}

// ResolveSession maps a cookie token to its account. Missing, expired and
// dangling sessions all resolve to nil.
func (s *authService) ResolveSession(token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.repo.GetSession(token, time.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	return s.repo.GetUserByID(session.UserID)
}

func (s *authService) UpdateProfile(caller *models.User, input models.UpdateProfileInput) (*models.User, error) {
	displayName := input.DisplayName
	if displayName == "" {
		displayName = caller.DisplayName
	}
	bio := input.Bio
	if bio == "" {
		bio = caller.Bio
	}
	avatarURL := input.AvatarURL
	if avatarURL == "" {
		avatarURL = caller.AvatarURL
	}

	now := time.Now().UnixMilli()
	if err := s.repo.UpdateProfile(caller.ID, displayName, bio, avatarURL, now); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.repo.GetUserByID(caller.ID)
}

// EnsureAdmin creates the bootstrap admin account if no account exists for
// the email. An existing account is left untouched, whatever its role.
func (s *authService) EnsureAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.repo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	admin := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  strings.SplitN(email, "@", 2)[0],
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(admin); err != nil {
		return err
	}

	s.logger.Info("Bootstrap admin created", zap.String("email", email), zap.Int64("id", admin.ID))
	return nil
}

func (s *authService) createSession(userID int64) (*models.Session, error) {
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.sessionTTL).UnixMilli(),
	}
	if err := s.repo.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// hashPassword produces an argon2id hash in the standard encoded form
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, encodedSalt, encodedHash), nil
}

// verifyPassword re-derives the hash with the parameters and salt embedded in
// the encoded form and compares in constant time.
func verifyPassword(encoded, password string) bool {
	sections := strings.Split(encoded, "$")
	// ["", "argon2id", "v=19", "m=...,t=...,p=...", salt, hash]
	if len(sections) != 6 || sections[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(sections[2], "v=%d", &version); err != nil {
		return false
	}
	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(sections[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(sections[5])
	if err != nil {
		return false
	}

	actual := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1
}
