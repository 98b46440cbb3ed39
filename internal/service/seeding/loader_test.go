package seeding

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderdesk/internal/storage/memory"
)

func newLoader(t *testing.T) (*Loader, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	loader := NewLoaderWithoutMetrics(memory.NewUnitOfWork(store), nil)
	return loader, store
}

func TestLoader_LoadDefaultBatch(t *testing.T) {
	loader, store := newLoader(t)

	result, err := loader.Load(context.Background(), DefaultBatch())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.ProductsInserted != 11 || result.ProductsSkipped != 0 {
		t.Fatalf("products inserted=%d skipped=%d, want 11/0", result.ProductsInserted, result.ProductsSkipped)
	}
	if result.CustomersCreated != 7 || result.CustomersExisted != 0 {
		t.Fatalf("customers created=%d existed=%d, want 7/0", result.CustomersCreated, result.CustomersExisted)
	}
	for i, customer := range result.Customers {
		if customer.ID == "" {
			t.Fatalf("customer[%d] %s has empty id", i, customer.LastName)
		}
	}

	products, err := memory.NewProductRepository(store).List(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 11 {
		t.Fatalf("stored products = %d, want 11", len(products))
	}

	hammer, err := memory.NewProductRepository(store).FindByUPC(context.Background(), "076174517163")
	if err != nil {
		t.Fatalf("find hammer: %v", err)
	}
	if hammer.PriceMinor != 997 || hammer.QtyOnHand != 50 {
		t.Fatalf("hammer price=%d qty=%d, want 997/50", hammer.PriceMinor, hammer.QtyOnHand)
	}
}

func TestLoader_ReloadIsIdempotent(t *testing.T) {
	loader, store := newLoader(t)

	first, err := loader.Load(context.Background(), DefaultBatch())
	if err != nil {
		t.Fatalf("first load: %v", err)
	}

	second, err := loader.Load(context.Background(), DefaultBatch())
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.ProductsInserted != 0 || second.ProductsSkipped != 11 {
		t.Fatalf("second load products inserted=%d skipped=%d, want 0/11", second.ProductsInserted, second.ProductsSkipped)
	}
	if second.CustomersCreated != 0 || second.CustomersExisted != 7 {
		t.Fatalf("second load customers created=%d existed=%d, want 0/7", second.CustomersCreated, second.CustomersExisted)
	}

	// Повторная загрузка возвращает те же ID, что и первая.
	firstIDs := make(map[string]string, len(first.Customers))
	for _, customer := range first.Customers {
		firstIDs[customer.Phone] = customer.ID
	}
	for _, customer := range second.Customers {
		if firstIDs[customer.Phone] != customer.ID {
			t.Fatalf("customer %s id changed between loads: %s != %s", customer.Phone, firstIDs[customer.Phone], customer.ID)
		}
	}

	customers, err := memory.NewCustomerRepository(store).List(context.Background())
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(customers) != 7 {
		t.Fatalf("stored customers = %d, want 7", len(customers))
	}
}

func TestLoader_ReloadKeepsMutatedStock(t *testing.T) {
	loader, store := newLoader(t)
	uow := memory.NewUnitOfWork(store)

	if _, err := loader.Load(context.Background(), DefaultBatch()); err != nil {
		t.Fatalf("load: %v", err)
	}

	err := uow.WithinTx(context.Background(), func(tx domain.Tx) error {
		return tx.DecrementStock(context.Background(), "076174517163", 10)
	})
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}

	if _, err := loader.Load(context.Background(), DefaultBatch()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	hammer, err := memory.NewProductRepository(store).FindByUPC(context.Background(), "076174517163")
	if err != nil {
		t.Fatalf("find hammer: %v", err)
	}
	if hammer.QtyOnHand != 40 {
		t.Fatalf("hammer qty after reload = %d, want 40", hammer.QtyOnHand)
	}
}

func TestLoader_RejectsInvalidProduct(t *testing.T) {
	loader, store := newLoader(t)

	batch := Batch{
		Products: []domain.Product{
			{UPC: "076174517163", Description: "hammer", Manufacturer: "Stanely Tools", ManufacturerCode: "1", PriceMinor: 997, QtyOnHand: 50},
			{UPC: "", Description: "broken", Manufacturer: "nobody", ManufacturerCode: "0", PriceMinor: 100, QtyOnHand: 1},
		},
	}
	_, err := loader.Load(context.Background(), batch)
	if !errors.Is(err, ErrInvalidBatch) {
		t.Fatalf("err = %v, want ErrInvalidBatch", err)
	}

	// Невалидный батч отклоняется целиком, валидная запись не вставляется.
	products, err := memory.NewProductRepository(store).List(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("stored products = %d, want 0", len(products))
	}
}

func TestLoader_RejectsPreAssignedCustomerID(t *testing.T) {
	loader, _ := newLoader(t)

	batch := Batch{
		Customers: []domain.Customer{
			{ID: "c-1", LastName: "Mcarthur", FirstName: "Khaleesi", Street: "Prospect Street", Zip: "90284", Phone: "484-645-8901"},
		},
	}
	_, err := loader.Load(context.Background(), batch)
	if !errors.Is(err, ErrInvalidBatch) {
		t.Fatalf("err = %v, want ErrInvalidBatch", err)
	}
}

func TestLoader_EnqueuesSeededEvent(t *testing.T) {
	loader, store := newLoader(t)

	if _, err := loader.Load(context.Background(), DefaultBatch()); err != nil {
		t.Fatalf("load: %v", err)
	}

	pending, err := memory.NewOutboxRepository(store).PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending outbox = %d, want 1", len(pending))
	}
	if pending[0].EventType != string(kafka.EventTypeCatalogSeeded) {
		t.Fatalf("event type = %s, want %s", pending[0].EventType, kafka.EventTypeCatalogSeeded)
	}

	// Payload обязан соответствовать опубликованной схеме события.
	var event kafka.CatalogSeededEvent
	if err := json.Unmarshal(pending[0].Payload, &event); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if event.EventType != kafka.EventTypeCatalogSeeded {
		t.Fatalf("event_type = %q, want %q", event.EventType, kafka.EventTypeCatalogSeeded)
	}
	if event.ProductsInserted != 11 || event.ProductsSkipped != 0 || event.CustomersCreated != 7 {
		t.Fatalf("unexpected event counters: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected event timestamp to be set")
	}
}
