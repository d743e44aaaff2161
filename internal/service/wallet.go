package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"blocktek-radio/internal/models"
	"blocktek-radio/internal/repository"
)

var (
	ErrInvalidRequest = errors.New("missing required fields")
	// ErrInvalidNonce covers both unknown nonces and nonces owned by another
	// account, so a caller cannot probe which nonces exist.
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrNonceExpired     = errors.New("nonce expired")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrLinkNotFound     = errors.New("link not found")
)

type WalletService interface {
	IssueNonce(caller *models.User) (string, error)
	VerifyAndLink(caller *models.User, nonce, signature string) (*models.WalletLink, error)
	Unlink(caller *models.User, address string) error
	ListLinks(caller *models.User) ([]*models.WalletLink, error)
}

type walletService struct {
	repo     repository.WalletRepository
	logger   *zap.Logger
	nonceTTL time.Duration
}

func NewWalletService(repo repository.WalletRepository, nonceTTL time.Duration, logger *zap.Logger) WalletService {
	return &walletService{
		repo:     repo,
		logger:   logger,
		nonceTTL: nonceTTL,
	}
}

// Challenge builds the canonical message a wallet must sign to link an
// address to the account with the given email. It is derived on both sides
// and never persisted, so the template must not change.
func Challenge(email, nonce string) string {
	return fmt.Sprintf("Link wallet to BlockTek Radio account (%s)\n\nNonce: %s", email, nonce)
}

func (s *walletService) IssueNonce(caller *models.User) (string, error) {
	nonce := &models.WalletNonce{
		Nonce:     uuid.NewString(),
		UserID:    caller.ID,
		ExpiresAt: time.Now().Add(s.nonceTTL).UnixMilli(),
	}
	if err := s.repo.CreateNonce(nonce); err != nil {
		return "", fmt.Errorf("failed to create nonce: %w", err)
	}
	return nonce.Nonce, nil
}

// VerifyAndLink proves control of an address by recovering it from the
// signature over the canonical challenge. On success the nonce is consumed
// and the link recorded atomically; every failure path leaves the nonce
// untouched.
func (s *walletService) VerifyAndLink(caller *models.User, nonce, signature string) (*models.WalletLink, error) {
	if nonce == "" || signature == "" {
		return nil, ErrInvalidRequest
	}

	row, err := s.repo.GetNonce(nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to look up nonce: %w", err)
	}
	if row == nil {
		return nil, ErrInvalidNonce
	}
	if row.UserID != caller.ID {
		s.logger.Warn("Nonce ownership mismatch",
			zap.Int64("owner_id", row.UserID),
			zap.Int64("caller_id", caller.ID),
		)
		return nil, ErrInvalidNonce
	}

	now := time.Now().UnixMilli()
	if row.ExpiresAt <= now {
		return nil, ErrNonceExpired
	}

	address, err := recoverAddress(Challenge(caller.Email, nonce), signature)
	if err != nil {
		s.logger.Debug("Signature recovery failed", zap.Error(err))
		return nil, ErrInvalidSignature
	}

	link := &models.WalletLink{
		UserID:   caller.ID,
		Address:  address,
		Verified: true,
		LinkedAt: now,
	}
	err = s.repo.ClaimNonceAndLink(nonce, caller.ID, now, link)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A concurrent verification claimed the nonce first.
			return nil, ErrInvalidNonce
		}
		return nil, fmt.Errorf("failed to store link: %w", err)
	}

	s.logger.Info("Wallet linked",
		zap.Int64("user_id", caller.ID),
		zap.String("address", address),
	)
	return link, nil
}

func (s *walletService) Unlink(caller *models.User, address string) error {
	if address == "" {
		return ErrInvalidRequest
	}
	err := s.repo.DeleteLink(caller.ID, strings.ToLower(address))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrLinkNotFound
	}
	return err
}

func (s *walletService) ListLinks(caller *models.User) ([]*models.WalletLink, error) {
	return s.repo.ListLinks(caller.ID)
}

// recoverAddress applies EIP-191 personal-message recovery to the challenge
// and returns the signing address, lowercased. The caller never asserts an
// address; whatever key signed is what gets linked.
func recoverAddress(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("malformed signature: %w", err)
	}
	if len(sig) != ethcrypto.SignatureLength {
		return "", fmt.Errorf("unexpected signature length %d", len(sig))
	}

	// Wallets emit V as 27/28; go-ethereum expects 0/1.
	if sig[ethcrypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[ethcrypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := ethcrypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", err
	}
	return strings.ToLower(ethcrypto.PubkeyToAddress(*pubKey).Hex()), nil
}
