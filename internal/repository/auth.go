package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"blocktek-radio/internal/models"
)

type AuthRepository interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	UpdateProfile(id int64, displayName, bio, avatarURL string, updatedAt int64) error
	UpdateRole(id int64, role string, updatedAt int64) error
	CreateSession(session *models.Session) error
	GetSession(token string, now int64) (*models.Session, error)
	DeleteSession(token string) error
}

type authRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAuthRepository(db *sqlx.DB, logger *zap.Logger) AuthRepository {
	return &authRepository{db: db, logger: logger}
}

func (r *authRepository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, display_name, avatar_url, bio, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := r.db.QueryRow(
		query,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.AvatarURL,
		user.Bio,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return err
	}
	return nil
}

func (r *authRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, password_hash, display_name, avatar_url, bio, role, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	err := r.db.Get(&user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *authRepository) GetUserByID(id int64) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, password_hash, display_name, avatar_url, bio, role, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	err := r.db.Get(&user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by ID", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *authRepository) UpdateProfile(id int64, displayName, bio, avatarURL string, updatedAt int64) error {
	query := `UPDATE users SET display_name = ?, bio = ?, avatar_url = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.Exec(query, displayName, bio, avatarURL, updatedAt, id)
	if err != nil {
		r.logger.Error("Failed to update profile", zap.Int64("id", id), zap.Error(err))
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *authRepository) UpdateRole(id int64, role string, updatedAt int64) error {
	query := `UPDATE users SET role = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.Exec(query, role, updatedAt, id)
	if err != nil {
		r.logger.Error("Failed to update role", zap.Int64("id", id), zap.String("role", role), zap.Error(err))
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *authRepository) CreateSession(session *models.Session) error {
	query := `INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`
	_, err := r.db.Exec(query, session.Token, session.UserID, session.ExpiresAt)
	if err != nil {
		r.logger.Error("Failed to create session", zap.Error(err))
		return err
	}
	return nil
}

// GetSession returns nil for both missing and expired tokens. Expired rows
// are left in place and ignored.
func (r *authRepository) GetSession(token string, now int64) (*models.Session, error) {
	var session models.Session
	query := `SELECT token, user_id, expires_at FROM sessions WHERE token = ? AND expires_at > ?`
	err := r.db.Get(&session, query, token, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get session", zap.Error(err))
		return nil, err
	}
	return &session, nil
}

func (r *authRepository) DeleteSession(token string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		r.logger.Error("Failed to delete session", zap.Error(err))
	}
	return err
}
