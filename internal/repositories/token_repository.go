package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type tokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new refresh token repository
func NewTokenRepository(db *sql.DB) *tokenRepository {
	return &tokenRepository{
		db: db,
	}
}

// Store saves a refresh token for a user
func (r *tokenRepository) Store(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	query := `INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, userID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// UserIDForToken resolves a refresh token to its user. Expired tokens resolve
// to ErrNotFound.
func (r *tokenRepository) UserIDForToken(ctx context.Context, token string) (int, error) {
	query := `SELECT user_id FROM refresh_tokens WHERE token = ? AND expires_at > NOW()`

	var userID int
	err := r.db.QueryRowContext(ctx, query, token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	return userID, nil
}

// Revoke deletes a refresh token
func (r *tokenRepository) Revoke(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = ?`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// DeleteExpired removes expired refresh tokens
func (r *tokenRepository) DeleteExpired(ctx context.Context) (int, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
