package repository

import (
	"context"

	"github.com/dwiyanpr/product-catalog-api/internal/domain/entity"
)

// TokenRepository persists issued bearer tokens by digest.
type TokenRepository interface {
	Create(ctx context.Context, t *entity.AccessToken) error
	GetByHash(ctx context.Context, tokenHash string) (*entity.AccessToken, error)
	// Revoke marks the token revoked. Revoking an unknown or already-revoked
	// hash is not an error.
	Revoke(ctx context.Context, tokenHash string) error
	TouchLastUsed(ctx context.Context, tokenHash string) error
}
