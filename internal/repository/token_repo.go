package repository

import (
	"context"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository stores one-time confirmation and password reset codes.
type TokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, t *domain.AuthToken) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO auth_tokens (token, user_id, purpose, expires_at) VALUES ($1, $2, $3, $4)`,
		t.Token, t.UserID, t.Purpose, t.ExpiresAt)
	return mapErr(err)
}

// Consume deletes an unexpired token of the given purpose and returns its user id.
// Unknown, expired or mismatched tokens yield ErrNotFound.
func (r *TokenRepository) Consume(ctx context.Context, token, purpose string) (string, error) {
	var userID string
	err := r.db.QueryRow(ctx,
		`DELETE FROM auth_tokens
		 WHERE token = $1 AND purpose = $2 AND expires_at > now()
		 RETURNING user_id`,
		token, purpose,
	).Scan(&userID)
	if err != nil {
		return "", mapErr(err)
	}
	return userID, nil
}

// PurgeExpired removes expired tokens and returns how many were deleted.
func (r *TokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
