package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwiyanpr/product-catalog-api/internal/domain/entity"
	"github.com/dwiyanpr/product-catalog-api/internal/domain/repository"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Create(ctx context.Context, t *entity.AccessToken) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO access_tokens (user_id, token_hash)
		VALUES ($1, $2)
		RETURNING id, created_at, last_used_at
	`, t.UserID, t.TokenHash)

	return row.Scan(&t.ID, &t.CreatedAt, &t.LastUsedAt)
}

func (r *TokenRepository) GetByHash(ctx context.Context, tokenHash string) (*entity.AccessToken, error) {
	t := &entity.AccessToken{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, revoked, created_at, last_used_at
		FROM access_tokens
		WHERE token_hash = $1
	`, tokenHash)

	if err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.Revoked, &t.CreatedAt, &t.LastUsedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

// Revoke is idempotent: zero rows affected still succeeds so a second
// logout with the same token surfaces as success.
func (r *TokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE access_tokens
		SET revoked = true
		WHERE token_hash = $1
	`, tokenHash)
	return err
}

func (r *TokenRepository) TouchLastUsed(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE access_tokens
		SET last_used_at = $1
		WHERE token_hash = $2
	`, time.Now(), tokenHash)
	return err
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
