package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// unitOfWork сериализует все транзакции на мьютексе Store. Изменения
// накапливаются в staging-структурах и применяются к основному состоянию
// только на commit, поэтому отказ на любом шаге не оставляет частичных записей.
type unitOfWork struct {
	store *Store
}

// NewUnitOfWork возвращает in-memory реализацию domain.UnitOfWork поверх store.
func NewUnitOfWork(store *Store) domain.UnitOfWork {
	return &unitOfWork{store: store}
}

// memTx — staged-состояние одной транзакции. Чтения видят свои же
// незакоммиченные изменения; commit происходит в WithinTx.
type memTx struct {
	store *Store

	stagedProducts  map[string]domain.Product
	stagedCustomers []domain.Customer
	stagedOrders    []domain.Order
	stagedOutbox    []domain.OutboxMessage
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Одна большая блокировка: in-memory store не претендует на
	// параллелизм postgres-реализации, только на ту же семантику.
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	tx := &memTx{
		store:          u.store,
		stagedProducts: make(map[string]domain.Product),
	}

	if err := fn(tx); err != nil {
		// Staged-изменения просто отбрасываются.
		return err
	}

	tx.apply()
	return nil
}

// apply переносит staged-изменения в основное состояние. Вызывается под mu.
func (t *memTx) apply() {
	for upc, product := range t.stagedProducts {
		t.store.products[upc] = product
	}
	for _, customer := range t.stagedCustomers {
		t.store.customers[customer.ID] = customer
		t.store.customersByPhone[customer.Phone] = customer.ID
	}
	for _, order := range t.stagedOrders {
		t.store.orders[order.ID] = order
	}
	now := time.Now().UTC()
	for _, msg := range t.stagedOutbox {
		t.store.outbox[msg.ID] = &outboxRecord{
			msg:       msg,
			status:    outboxStatusPending,
			createdAt: now,
			updatedAt: now,
		}
	}
}

func (t *memTx) CustomerByID(_ context.Context, id string) (domain.Customer, error) {
	for _, customer := range t.stagedCustomers {
		if customer.ID == id {
			return customer, nil
		}
	}
	customer, ok := t.store.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrUnknownCustomer
	}
	return customer, nil
}

func (t *memTx) ProductByUPC(_ context.Context, upc string) (domain.Product, error) {
	if product, ok := t.stagedProducts[upc]; ok {
		return product, nil
	}
	product, ok := t.store.products[upc]
	if !ok {
		return domain.Product{}, &domain.UnknownProductError{UPC: upc}
	}
	return product, nil
}

func (t *memTx) DecrementStock(ctx context.Context, upc string, qty int32) error {
	product, err := t.ProductByUPC(ctx, upc)
	if err != nil {
		return err
	}
	if product.QtyOnHand < qty {
		return &domain.InsufficientStockError{
			UPC:       upc,
			Requested: qty,
			Available: product.QtyOnHand,
		}
	}
	product.QtyOnHand -= qty
	product.UpdatedAt = time.Now().UTC()
	t.stagedProducts[upc] = product
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, order domain.Order) error {
	if _, exists := t.store.orders[order.ID]; exists {
		return domain.ErrDuplicateOrder
	}
	for _, staged := range t.stagedOrders {
		if staged.ID == order.ID {
			return domain.ErrDuplicateOrder
		}
	}
	t.stagedOrders = append(t.stagedOrders, order)
	return nil
}

func (t *memTx) InsertProduct(_ context.Context, product domain.Product) (bool, error) {
	if _, exists := t.store.products[product.UPC]; exists {
		return false, nil
	}
	if _, staged := t.stagedProducts[product.UPC]; staged {
		return false, nil
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	t.stagedProducts[product.UPC] = product
	return true, nil
}

func (t *memTx) EnsureCustomer(_ context.Context, customer domain.Customer) (domain.Customer, bool, error) {
	if id, ok := t.store.customersByPhone[customer.Phone]; ok {
		return t.store.customers[id], false, nil
	}
	for _, staged := range t.stagedCustomers {
		if staged.Phone == customer.Phone {
			return staged, false, nil
		}
	}

	// ID присваивается хранилищем: до этой точки поле обязано быть пустым.
	customer.ID = uuid.NewString()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	t.stagedCustomers = append(t.stagedCustomers, customer)
	return customer, true, nil
}

func (t *memTx) EnqueueOutbox(_ context.Context, msg domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	t.stagedOutbox = append(t.stagedOutbox, msg)
	return nil
}

var _ domain.Tx = (*memTx)(nil)
var _ domain.UnitOfWork = (*unitOfWork)(nil)
