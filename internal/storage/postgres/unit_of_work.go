package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

type unitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork создаёт PostgreSQL-реализацию UnitOfWork.
func NewUnitOfWork(store *Store) domain.UnitOfWork {
	return &unitOfWork{db: store.DB()}
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	sqlTx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", domain.ErrStoreUnavailable, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(&pgTx{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx: %v", domain.ErrStoreUnavailable, err)
	}
	committed = true
	return nil
}

// pgTx реализует domain.Tx поверх открытой SQL-транзакции.
type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) CustomerByID(ctx context.Context, id string) (domain.Customer, error) {
	var customer domain.Customer
	err := t.tx.QueryRowContext(ctx, `
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
		return domain.Customer{}, storeErr("query customer", err)
	}
	return customer, nil
}

// ProductByUPC читает товар с блокировкой строки до конца транзакции.
// Вызывающая сторона обязана обходить UPC в отсортированном порядке,
// иначе конкурирующие транзакции могут попасть в deadlock.
func (t *pgTx) ProductByUPC(ctx context.Context, upc string) (domain.Product, error) {
	var product domain.Product
	err := t.tx.QueryRowContext(ctx, `
		SELECT upc, description, manufacturer, manufacturer_code,
		       price_minor, qty_on_hand, created_at, updated_at
		FROM products
		WHERE upc = $1
		FOR UPDATE
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
		return domain.Product{}, storeErr("query product", err)
	}
	return product, nil
}

func (t *pgTx) DecrementStock(ctx context.Context, upc string, qty int32) error {
	// Декремент защищён условием qty_on_hand >= qty: при нехватке остатка
	// UPDATE не трогает ни одной строки и транзакция откатывается целиком.
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET qty_on_hand = qty_on_hand - $1, updated_at = NOW()
		WHERE upc = $2 AND qty_on_hand >= $1
	`, qty, upc)
	if err != nil {
		return storeErr("decrement stock", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("decrement stock rows affected", err)
	}
	if affected == 1 {
		return nil
	}

	var available int32
	err = t.tx.QueryRowContext(ctx,
		`SELECT qty_on_hand FROM products WHERE upc = $1`, upc,
	).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.UnknownProductError{UPC: upc}
	}
	if err != nil {
		return storeErr("query stock after failed decrement", err)
	}
	return &domain.InsufficientStockError{UPC: upc, Requested: qty, Available: available}
}

func (t *pgTx) InsertOrder(ctx context.Context, order domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, amount_minor, created_at)
		VALUES ($1, $2, $3, $4)
	`, order.ID, order.CustomerID, order.AmountMinor, order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateOrder
		}
		return storeErr("insert order", err)
	}

	for _, item := range order.Items {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_lines (id, order_id, upc, qty, price_minor, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, order.ID, item.UPC, item.Qty, item.PriceMinor, item.CreatedAt)
		if err != nil {
			return storeErr("insert order line", err)
		}
	}

	return nil
}

func (t *pgTx) InsertProduct(ctx context.Context, product domain.Product) (bool, error) {
	now := time.Now().UTC()
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO products (
			upc, description, manufacturer, manufacturer_code,
			price_minor, qty_on_hand, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (upc) DO NOTHING
	`,
		product.UPC, product.Description, product.Manufacturer, product.ManufacturerCode,
		product.PriceMinor, product.QtyOnHand, now, now,
	)
	if err != nil {
		return false, storeErr("insert product", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("insert product rows affected", err)
	}
	return affected == 1, nil
}

func (t *pgTx) EnsureCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, bool, error) {
	customer.ID = uuid.NewString()
	customer.CreatedAt = time.Now().UTC()

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO customers (id, last_name, first_name, street, zip, phone, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT ON CONSTRAINT customers_phone_key DO NOTHING
	`,
		customer.ID, customer.LastName, customer.FirstName,
		customer.Street, customer.Zip, customer.Phone, customer.CreatedAt,
	)
	if err != nil {
		return domain.Customer{}, false, storeErr("insert customer", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Customer{}, false, storeErr("insert customer rows affected", err)
	}
	if affected == 1 {
		return customer, true, nil
	}

	var existing domain.Customer
	err = t.tx.QueryRowContext(ctx, `
		SELECT id, last_name, first_name, street, zip, phone, created_at
		FROM customers
		WHERE phone = $1
	`, customer.Phone).Scan(
		&existing.ID,
		&existing.LastName,
		&existing.FirstName,
		&existing.Street,
		&existing.Zip,
		&existing.Phone,
		&existing.CreatedAt,
	)
	if err != nil {
		return domain.Customer{}, false, storeErr("query customer by phone", err)
	}
	return existing, false, nil
}

func (t *pgTx) EnqueueOutbox(ctx context.Context, msg domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,'pending',0,$6,$7)
	`,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, now, now,
	)
	if err != nil {
		return storeErr("enqueue outbox message", err)
	}
	return nil
}

// storeErr оборачивает инфраструктурную ошибку в ErrStoreUnavailable,
// сохраняя текст причины.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)
var _ domain.Tx = (*pgTx)(nil)
