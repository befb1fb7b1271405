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

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (user_id, title, description, cost, banner_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Title, p.Description, p.Cost, p.BannerImage)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p := &entity.Product{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, cost, banner_image, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id)

	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Cost,
		&p.BannerImage, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *ProductRepository) ListByOwner(ctx context.Context, userID string) ([]*entity.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, description, cost, banner_image, created_at, updated_at
		FROM products
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Product, 0)
	for rows.Next() {
		p := &entity.Product{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Cost,
			&p.BannerImage, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE products
		SET title = $1, description = $2, cost = $3, banner_image = $4, updated_at = $5
		WHERE id = $6
	`, p.Title, p.Description, p.Cost, p.BannerImage, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM products
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
