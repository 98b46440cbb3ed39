package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var customer domain.Customer
	err := r.db.QueryRowContext(queryCtx, `
		SELECT id, last_name, first_name, street, zip, phone, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(
		&customer.ID,
		&customer.LastName,
		&customer.FirstName,
		&customer.Street,
		&customer.Zip,
		&customer.Phone,
		&customer.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, domain.ErrUnknownCustomer
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("query customer by id: %w", err)
	}
	return customer, nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(queryCtx, `
		SELECT id, last_name, first_name, street, zip, phone, created_at
		FROM customers
		ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(
			&customer.ID,
			&customer.LastName,
			&customer.FirstName,
			&customer.Street,
			&customer.Zip,
			&customer.Phone,
			&customer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		result = append(result, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return result, nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
