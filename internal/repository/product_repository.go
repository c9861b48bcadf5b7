package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fjod/go_shop/internal/domain"
)

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (sku, name, description, price)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, p.SKU, p.Name, p.Description, p.Price).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	query := `SELECT id, sku, name, description, price, created_at, updated_at
	          FROM products WHERE id = $1`
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return &p, nil
}

func (r *Repository) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	var products []*domain.Product
	query := `SELECT id, sku, name, description, price, created_at, updated_at
	          FROM products ORDER BY id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &products, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
