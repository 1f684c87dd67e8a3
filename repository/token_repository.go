// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"go-shop-api/logger"
	"time"

	"github.com/sirupsen/logrus"
)

// TokenRepository is the postgres-backed TokenStore. It keeps one row per
// active refresh token in refresh_tokens.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Add inserts a new refresh token record. Re-adding an already active token
// only refreshes its expiry.
func (r *TokenRepository) Add(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"expires_at": expiresAt,
	})
	log.Info("Executing query to store a refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at`
	if _, err := r.DB.ExecContext(ctx, query, userID, HashToken(token), expiresAt); err != nil {
		log.WithError(err).Error("Failed to execute store refresh token query")
		return err
	}
	return nil
}

// Contains reports whether an unexpired row exists for token.
func (r *TokenRepository) Contains(ctx context.Context, token string) (bool, error) {
	tokenHash := HashToken(token)
	log := logger.Log.WithField("token_hash", tokenHash)
	log.Info("Executing query to check refresh token")

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token_hash = $1 AND expires_at > $2)`
	if err := r.DB.QueryRowContext(ctx, query, tokenHash, time.Now().UTC()).Scan(&exists); err != nil {
		log.WithError(err).Error("Failed to execute check refresh token query")
		return false, err
	}
	return exists, nil
}

// Remove deletes the row for token, if any. It reports true only when the
// deleted row had not yet expired; expired rows are left to DeleteExpired.
func (r *TokenRepository) Remove(ctx context.Context, token string) (bool, error) {
	tokenHash := HashToken(token)
	log := logger.Log.WithField("token_hash", tokenHash)
	log.Info("Executing query to delete a refresh token")

	query := `DELETE FROM refresh_tokens WHERE token_hash = $1 AND expires_at > $2`
	res, err := r.DB.ExecContext(ctx, query, tokenHash, time.Now().UTC())
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh token query")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired removes rows past their expiry and returns how many went.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, time.Now().UTC())
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete expired refresh tokens query")
		return 0, err
	}
	return res.RowsAffected()
}
