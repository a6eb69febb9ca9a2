package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Saideepak144/KodBank/internal/domain"
)

// TokenRepository persists issued session tokens in the identity store.
// A token row is the server-side half of a session: deleting it revokes
// the session even though the JWT is still signature-valid.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.SessionToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_tokens (id, token_value, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.TokenValue, token.UserID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetValid returns the token row only while it has not expired.
func (r *TokenRepository) GetValid(ctx context.Context, tokenValue string) (*domain.SessionToken, error) {
	var t domain.SessionToken
	err := r.db.QueryRowContext(ctx,
		`SELECT id, token_value, user_id, expires_at, created_at
		FROM user_tokens
		WHERE token_value = $1 AND expires_at > now()`,
		tokenValue,
	).Scan(&t.ID, &t.TokenValue, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetValid: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetValid: %w", err)
	}
	return &t, nil
}

func (r *TokenRepository) Delete(ctx context.Context, tokenValue string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE token_value = $1`, tokenValue,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE expires_at < now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: rows affected: %w", err)
	}
	return n, nil
}
