package orderentry_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/orderentry"
	"github.com/vladislavdragonenkov/orderdesk/internal/storage/memory"
)

type fixture struct {
	store    *memory.Store
	builder  *orderentry.Builder
	customer domain.Customer
}

// newFixture поднимает in-memory хранилище с товаром из канонического сида
// (молоток Stanely, остаток 50) и одним покупателем.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store)

	var customer domain.Customer
	err := uow.WithinTx(context.Background(), func(tx domain.Tx) error {
		if _, err := tx.InsertProduct(context.Background(), domain.Product{
			UPC:              "076174517163",
			Description:      "16 oz. hickory hammer",
			Manufacturer:     "Stanely Tools",
			ManufacturerCode: "1",
			PriceMinor:       997,
			QtyOnHand:        50,
		}); err != nil {
			return err
		}
		if _, err := tx.InsertProduct(context.Background(), domain.Product{
			UPC:              "042187012933",
			Description:      "Mozzarella String Cheese",
			Manufacturer:     "American Heritage",
			ManufacturerCode: "56",
			PriceMinor:       1599,
			QtyOnHand:        500,
		}); err != nil {
			return err
		}
		var err error
		customer, _, err = tx.EnsureCustomer(context.Background(), domain.Customer{
			LastName:  "Mcarthur",
			FirstName: "Khaleesi",
			Street:    "Prospect Street",
			Zip:       "90284",
			Phone:     "484-645-8901",
		})
		return err
	})
	if err != nil {
		t.Fatalf("fixture setup: %v", err)
	}

	return &fixture{
		store:    store,
		builder:  orderentry.NewBuilderWithoutMetrics(uow, nil),
		customer: customer,
	}
}

func (f *fixture) stock(t *testing.T, upc string) int32 {
	t.Helper()
	product, err := memory.NewProductRepository(f.store).FindByUPC(context.Background(), upc)
	if err != nil {
		t.Fatalf("find product %s: %v", upc, err)
	}
	return product.QtyOnHand
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	orders, err := memory.NewOrderRepository(f.store).ListByCustomer(context.Background(), f.customer.ID, 0)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	return len(orders)
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture(t)

	order, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
		{UPC: "076174517163", Qty: 10},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if order.ID == "" {
		t.Fatal("expected generated order id")
	}
	if len(order.Items) != 1 || order.Items[0].Qty != 10 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	// Цена позиции — снимок из каталога на момент оформления.
	if order.Items[0].PriceMinor != 997 {
		t.Fatalf("expected snapshot price 997, got %d", order.Items[0].PriceMinor)
	}
	if order.AmountMinor != 9970 {
		t.Fatalf("expected amount 9970, got %d", order.AmountMinor)
	}
	if got := f.stock(t, "076174517163"); got != 40 {
		t.Fatalf("expected stock 40 after sale, got %d", got)
	}
}

func TestPlaceOrder_StockAccounting(t *testing.T) {
	f := newFixture(t)

	before := f.stock(t, "076174517163")
	order, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
		{UPC: "076174517163", Qty: 3},
		{UPC: "042187012933", Qty: 2},
		{UPC: "076174517163", Qty: 4},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	// Сумма зафиксированных позиций по товару равна разнице остатков.
	var committed int32
	for _, item := range order.Items {
		if item.UPC == "076174517163" {
			committed += item.Qty
		}
	}
	after := f.stock(t, "076174517163")
	if before-after != committed {
		t.Fatalf("stock delta %d does not match committed qty %d", before-after, committed)
	}
}

func TestPlaceOrder_DuplicateLinesCoalescedForStockCheck(t *testing.T) {
	f := newFixture(t)

	// По отдельности обе позиции проходят (30 и 30), суммарно — нет (60 > 50).
	_, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
		{UPC: "076174517163", Qty: 30},
		{UPC: "076174517163", Qty: 30},
	})

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 60 || stockErr.Available != 50 {
		t.Fatalf("unexpected error fields: %+v", stockErr)
	}
	if got := f.stock(t, "076174517163"); got != 50 {
		t.Fatalf("expected stock unchanged at 50, got %d", got)
	}

	// А суммарно допустимые дубли сохраняются раздельными позициями.
	order, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
		{UPC: "076174517163", Qty: 20},
		{UPC: "076174517163", Qty: 20},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 distinct line items, got %d", len(order.Items))
	}
	if got := f.stock(t, "076174517163"); got != 10 {
		t.Fatalf("expected stock 10, got %d", got)
	}
}

func TestPlaceOrder_InsufficientStockLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
		{UPC: "076174517163", Qty: 1000},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if got := f.stock(t, "076174517163"); got != 50 {
		t.Fatalf("expected stock 50, got %d", got)
	}
	if n := f.orderCount(t); n != 0 {
		t.Fatalf("expected no orders, got %d", n)
	}
}

func TestPlaceOrder_MixedOrderFailsAtomically(t *testing.T) {
	f := newFixture(t)

	// Первая позиция валидна, вторая — нет: ни одна не должна примениться.
	_, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
		{UPC: "042187012933", Qty: 5},
		{UPC: "076174517163", Qty: 1000},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if got := f.stock(t, "042187012933"); got != 500 {
		t.Fatalf("expected stock 500, got %d", got)
	}
	if got := f.stock(t, "076174517163"); got != 50 {
		t.Fatalf("expected stock 50, got %d", got)
	}
	if n := f.orderCount(t); n != 0 {
		t.Fatalf("expected no orders, got %d", n)
	}
}

func TestPlaceOrder_UnknownCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.PlaceOrder(context.Background(), "no-such-customer", []orderentry.LineRequest{
		{UPC: "076174517163", Qty: 1},
	})
	if !errors.Is(err, domain.ErrUnknownCustomer) {
		t.Fatalf("expected ErrUnknownCustomer, got %v", err)
	}
	if got := f.stock(t, "076174517163"); got != 50 {
		t.Fatalf("expected stock unchanged, got %d", got)
	}
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
		{UPC: "076174517163", Qty: 1},
		{UPC: "000000000000", Qty: 1},
	})

	var unknown *domain.UnknownProductError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownProductError, got %v", err)
	}
	if unknown.UPC != "000000000000" {
		t.Fatalf("expected offending upc in error, got %s", unknown.UPC)
	}
	if got := f.stock(t, "076174517163"); got != 50 {
		t.Fatalf("expected stock unchanged, got %d", got)
	}
}

func TestPlaceOrder_EmptyOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, nil)
	if !errors.Is(err, domain.ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
}

// Проверка клиента идёт раньше проверки состава: неизвестный клиент
// с пустым списком позиций получает именно ошибку клиента.
func TestPlaceOrder_UnknownCustomerPrecedesEmptyOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.PlaceOrder(context.Background(), "no-such-customer", nil)
	if !errors.Is(err, domain.ErrUnknownCustomer) {
		t.Fatalf("expected ErrUnknownCustomer, got %v", err)
	}
	if errors.Is(err, domain.ErrEmptyOrder) {
		t.Fatalf("expected customer error to take precedence, got %v", err)
	}
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	f := newFixture(t)

	for _, qty := range []int32{0, -3} {
		_, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
			{UPC: "076174517163", Qty: qty},
		})
		var invalid *domain.InvalidQuantityError
		if !errors.As(err, &invalid) {
			t.Fatalf("qty=%d: expected InvalidQuantityError, got %v", qty, err)
		}
		if invalid.UPC != "076174517163" {
			t.Fatalf("expected offending upc in error, got %s", invalid.UPC)
		}
	}
}

func TestPlaceOrder_OutboxEventEnqueued(t *testing.T) {
	f := newFixture(t)

	order, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
		{UPC: "076174517163", Qty: 1},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	pending, err := memory.NewOutboxRepository(f.store).PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 outbox message, got %d", len(pending))
	}
	if pending[0].EventType != string(kafka.EventTypeOrderPlaced) || pending[0].AggregateID != order.ID {
		t.Fatalf("unexpected outbox message: %+v", pending[0])
	}

	// Payload обязан декодироваться в опубликованную схему события:
	// именно её читают потребители топика.
	var event kafka.OrderPlacedEvent
	if err := json.Unmarshal(pending[0].Payload, &event); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if event.EventType != kafka.EventTypeOrderPlaced {
		t.Fatalf("expected event_type %q, got %q", kafka.EventTypeOrderPlaced, event.EventType)
	}
	if event.OrderID != order.ID || event.CustomerID != f.customer.ID {
		t.Fatalf("unexpected event identifiers: %+v", event)
	}
	if event.AmountMinor != 997 {
		t.Fatalf("expected amount 997, got %d", event.AmountMinor)
	}
	if len(event.Lines) != 1 || event.Lines[0].UPC != "076174517163" || event.Lines[0].Qty != 1 {
		t.Fatalf("unexpected event lines: %+v", event.Lines)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected event timestamp to be set")
	}
}

// Конкурентный сценарий: суммарный спрос ровно равен остатку —
// все вызовы обязаны пройти, финальный остаток ноль.
func TestPlaceOrder_ConcurrentExactStock(t *testing.T) {
	f := newFixture(t)

	const callers = 10
	const qtyPerCall = 5 // 10 * 5 = 50, ровно остаток

	var wg sync.WaitGroup
	errCh := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.builder.PlaceOrder(context.Background(), f.customer.ID, []orderentry.LineRequest{
				{UPC: "076174517163", Qty: qtyPerCall},
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected failure: %v", err)
		}
	}
	if got := f.stock(t, "076174517163"); got != 0 {
		t.Fatalf("expected final stock 0, got %d", got)
	}
	if n := f.orderCount(t); n != callers {
		t.Fatalf("expected %d orders, got %d", callers, n)
	}
}

// Конкурентный сценарий: остатка на одну единицу меньше суммарного спроса —
// проходят ровно те вызовы, что помещаются, остальные получают
// InsufficientStock; двойной продажи последней единицы нет.
func TestPlaceOrder_ConcurrentStockShortByOne(t *testing.T) {
	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store)

	var customer domain.Customer
	err := uow.WithinTx(context.Background(), func(tx domain.Tx) error {
		if _, err := tx.InsertProduct(context.Background(), domain.Product{
			UPC:         "045674530217",
			Description: "Large Brown Eggs",
			PriceMinor:  599,
			QtyOnHand:   49, // 10 * 5 - 1
		}); err != nil {
			return err
		}
		var err error
		customer, _, err = tx.EnsureCustomer(context.Background(), domain.Customer{
			LastName: "Suarez", FirstName: "Cody", Phone: "812-913-6880",
		})
		return err
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	builder := orderentry.NewBuilderWithoutMetrics(uow, nil)

	const callers = 10
	const qtyPerCall = 5

	var wg sync.WaitGroup
	errCh := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := builder.PlaceOrder(context.Background(), customer.ID, []orderentry.LineRequest{
				{UPC: "045674530217", Qty: qtyPerCall},
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	succeeded, failed := 0, 0
	for err := range errCh {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientStock):
			failed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Помещаются ровно 9 вызовов по 5 единиц; остаток 4 < 5 для десятого.
	if succeeded != callers-1 || failed != 1 {
		t.Fatalf("expected %d successes and 1 failure, got %d/%d", callers-1, succeeded, failed)
	}

	product, err := memory.NewProductRepository(store).FindByUPC(context.Background(), "045674530217")
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if product.QtyOnHand != 4 {
		t.Fatalf("expected final stock 4, got %d", product.QtyOnHand)
	}
}
