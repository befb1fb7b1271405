package repository

import (
	"context"

	"github.com/dwiyanpr/product-catalog-api/internal/domain/entity"
)

// ProductRepository defines the interface for product table operations.
// Ownership checks are NOT enforced here; the application layer compares
// Product.UserID against the resolved caller before mutating.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListByOwner(ctx context.Context, userID string) ([]*entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
}
