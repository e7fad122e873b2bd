package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"moreyou/storefront/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository archives product documents fetched from the storefront
// platform, keyed by handle.
type ProductRepository interface {
	SaveProduct(ctx context.Context, product *domain.Product) error
}

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r *productRepository) SaveProduct(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product %s: %w", product.Handle, err)
	}

	query := `
	INSERT INTO products (handle, remote_id, data)
	VALUES ($1, $2, $3)
	ON CONFLICT (handle)
	DO UPDATE SET remote_id = $2, data = $3`
	_, err = r.db.Exec(ctx, query, product.Handle, product.ID, data)
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", product.Handle, err)
	}

	return nil
}
