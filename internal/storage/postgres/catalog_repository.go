package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

const opTimeout = 5 * time.Second

type catalogRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &catalogRepository{db: store.DB()}
}

func (r *catalogRepository) FindByUPC(ctx context.Context, upc string) (domain.Product, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(queryCtx, `
		SELECT upc, description, manufacturer, manufacturer_code,
		       price_minor, qty_on_hand, created_at, updated_at
		FROM products
		WHERE upc = $1
	`, upc).Scan(
		&product.UPC,
		&product.Description,
		&product.Manufacturer,
		&product.ManufacturerCode,
		&product.PriceMinor,
		&product.QtyOnHand,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, &domain.UnknownProductError{UPC: upc}
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("query product by upc: %w", err)
	}
	return product, nil
}

func (r *catalogRepository) List(ctx context.Context) ([]domain.Product, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(queryCtx, `
		SELECT upc, description, manufacturer, manufacturer_code,
		       price_minor, qty_on_hand, created_at, updated_at
		FROM products
		ORDER BY upc
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.UPC,
			&product.Description,
			&product.Manufacturer,
			&product.ManufacturerCode,
			&product.PriceMinor,
			&product.QtyOnHand,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return result, nil
}

var _ domain.ProductRepository = (*catalogRepository)(nil)
