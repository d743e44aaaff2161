package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"blocktek-radio/internal/models"
)

type WalletRepository interface {
	CreateNonce(nonce *models.WalletNonce) error
	GetNonce(nonce string) (*models.WalletNonce, error)
	ClaimNonceAndLink(nonce string, userID int64, now int64, link *models.WalletLink) error
	ListLinks(userID int64) ([]*models.WalletLink, error)
	DeleteLink(userID int64, address string) error
}

type walletRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewWalletRepository(db *sqlx.DB, logger *zap.Logger) WalletRepository {
	return &walletRepository{db: db, logger: logger}
}

func (r *walletRepository) CreateNonce(nonce *models.WalletNonce) error {
	query := `INSERT INTO wallet_nonces (nonce, user_id, expires_at) VALUES (?, ?, ?)`
	_, err := r.db.Exec(query, nonce.Nonce, nonce.UserID, nonce.ExpiresAt)
	if err != nil {
		r.logger.Error("Failed to create wallet nonce", zap.Error(err))
		return err
	}
	return nil
}

func (r *walletRepository) GetNonce(nonce string) (*models.WalletNonce, error) {
	var row models.WalletNonce
	query := `SELECT nonce, user_id, expires_at FROM wallet_nonces WHERE nonce = ?`
	err := r.db.Get(&row, query, nonce)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get wallet nonce", zap.Error(err))
		return nil, err
	}
	return &row, nil
}

// ClaimNonceAndLink consumes the nonce and records the link in one
// transaction. The conditional delete is the claim step: if it removes no row
// (already consumed, foreign, or expired) the call returns sql.ErrNoRows and
// nothing is written, so at most one claim per nonce can ever succeed.
func (r *walletRepository) ClaimNonceAndLink(nonce string, userID int64, now int64, link *models.WalletLink) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`DELETE FROM wallet_nonces WHERE nonce = ? AND user_id = ? AND expires_at > ?`,
		nonce, userID, now,
	)
	if err != nil {
		r.logger.Error("Failed to claim wallet nonce", zap.Error(err))
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	err = tx.QueryRow(
		`INSERT INTO wallet_links (user_id, address, verified, linked_at) VALUES (?, ?, ?, ?) RETURNING id`,
		link.UserID, link.Address, link.Verified, link.LinkedAt,
	).Scan(&link.ID)
	if err != nil {
		r.logger.Error("Failed to create wallet link", zap.Error(err))
		return err
	}

	return tx.Commit()
}

func (r *walletRepository) ListLinks(userID int64) ([]*models.WalletLink, error) {
	links := []*models.WalletLink{}
	query := `SELECT id, user_id, address, verified, linked_at FROM wallet_links WHERE user_id = ? ORDER BY linked_at DESC, id DESC`
	err := r.db.Select(&links, query, userID)
	if err != nil {
		r.logger.Error("Failed to list wallet links", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return links, nil
}

func (r *walletRepository) DeleteLink(userID int64, address string) error {
	result, err := r.db.Exec(`DELETE FROM wallet_links WHERE user_id = ? AND address = ?`, userID, address)
	if err != nil {
		r.logger.Error("Failed to delete wallet link", zap.Int64("user_id", userID), zap.Error(err))
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
