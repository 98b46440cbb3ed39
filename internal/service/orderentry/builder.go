package orderentry

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderdesk/internal/metrics"
)

// LineRequest — одна запрошенная оператором позиция: товар и количество.
// Один и тот же UPC может встречаться в нескольких позициях.
type LineRequest struct {
	UPC string
	Qty int32
}

// Метки причин отказа для метрик.
const (
	failureUnknownCustomer   = "unknown_customer"
	failureUnknownProduct    = "unknown_product"
	failureEmptyOrder        = "empty_order"
	failureInvalidQuantity   = "invalid_quantity"
	failureInsufficientStock = "insufficient_stock"
	failureStore             = "store_error"
)

// Builder собирает и фиксирует заказы. Каждый вызов PlaceOrder выполняется
// как один unit of work: сначала валидация всех позиций, затем атомарный
// commit заказа вместе с декрементом остатков.
type Builder struct {
	uow     domain.UnitOfWork
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewBuilder создаёт рабочий экземпляр Order Builder.
func NewBuilder(uow domain.UnitOfWork, logger *log.Entry) *Builder {
	if logger == nil {
		logger = log.New().WithField("component", "order-builder")
	}
	return &Builder{
		uow:     uow,
		logger:  logger,
		metrics: metrics.NewOrderMetrics(),
	}
}

// NewBuilderWithoutMetrics создаёт builder без метрик (для тестов).
func NewBuilderWithoutMetrics(uow domain.UnitOfWork, logger *log.Entry) *Builder {
	if logger == nil {
		logger = log.New().WithField("component", "order-builder")
	}
	return &Builder{
		uow:    uow,
		logger: logger,
	}
}

// PlaceOrder валидирует запрошенные позиции и фиксирует заказ.
//
// Порядок проверок фиксирован: клиент, пустой заказ, существование каждого
// товара, количества. Любой отказ валидации возвращается до каких-либо
// изменений; отказ на commit откатывает транзакцию целиком, так что
// частичное состояние не наблюдается другими читателями.
func (b *Builder) PlaceOrder(ctx context.Context, customerID string, lines []LineRequest) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.RecordPlaceDuration(time.Since(start))
		}
	}()

	var order domain.Order
	err := b.uow.WithinTx(ctx, func(tx domain.Tx) error {
		customer, err := tx.CustomerByID(ctx, customerID)
		if err != nil {
			return err
		}

		// Клиент проверяется первым: для неизвестного клиента с пустым
		// списком позиций оператор должен увидеть именно ошибку клиента.
		if len(lines) == 0 {
			return domain.ErrEmptyOrder
		}

		products, err := b.resolveProducts(ctx, tx, lines)
		if err != nil {
			return err
		}

		if err := b.validateQuantities(lines, products); err != nil {
			return err
		}

		order = b.buildOrder(customer.ID, lines, products)

		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		// Декремент по схлопнутым количествам, в порядке UPC:
		// единый порядок захвата строк исключает deadlock между
		// конкурентными транзакциями.
		totals := order.TotalQtyByUPC()
		for _, upc := range sortedUPCs(totals) {
			if err := tx.DecrementStock(ctx, upc, totals[upc]); err != nil {
				return err
			}
		}

		return b.enqueuePlacedEvent(ctx, tx, order)
	})
	if err != nil {
		b.recordError(customerID, err)
		return domain.Order{}, err
	}

	if b.metrics != nil {
		b.metrics.RecordOrderPlaced()
		for _, qty := range order.TotalQtyByUPC() {
			b.metrics.RecordUnitsSold(qty)
		}
	}
	b.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"lines":        len(order.Items),
		"amount_minor": order.AmountMinor,
	}).Info("order placed")

	return order, nil
}

// resolveProducts разрешает каждый UPC из запроса. Все позиции резолвятся
// до каких-либо мутаций; первый же неизвестный UPC прерывает операцию.
// UPC обходятся в отсортированном порядке: SQL-реализация блокирует строки
// товаров (FOR UPDATE), и единый порядок предотвращает deadlock.
func (b *Builder) resolveProducts(ctx context.Context, tx domain.Tx, lines []LineRequest) (map[string]domain.Product, error) {
	unique := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		unique[line.UPC] = struct{}{}
	}

	upcs := make([]string, 0, len(unique))
	for upc := range unique {
		upcs = append(upcs, upc)
	}
	sort.Strings(upcs)

	products := make(map[string]domain.Product, len(upcs))
	for _, upc := range upcs {
		product, err := tx.ProductByUPC(ctx, upc)
		if err != nil {
			return nil, err
		}
		products[upc] = product
	}
	return products, nil
}

// validateQuantities проверяет каждую позицию и суммарное количество по
// товару против текущего остатка. Дубли позиций схлопываются только для
// проверки остатка.
func (b *Builder) validateQuantities(lines []LineRequest, products map[string]domain.Product) error {
	totals := make(map[string]int32, len(products))
	for _, line := range lines {
		if line.Qty <= 0 {
			return &domain.InvalidQuantityError{UPC: line.UPC, Qty: line.Qty}
		}
		totals[line.UPC] += line.Qty
	}

	for _, upc := range sortedUPCs(totals) {
		product := products[upc]
		if totals[upc] > product.QtyOnHand {
			return &domain.InsufficientStockError{
				UPC:       upc,
				Requested: totals[upc],
				Available: product.QtyOnHand,
			}
		}
	}
	return nil
}

// buildOrder конструирует заказ: новый ID, текущий момент, по одной позиции
// на каждую запрошенную строку, цена — снимок из каталога.
func (b *Builder) buildOrder(customerID string, lines []LineRequest, products map[string]domain.Product) domain.Order {
	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		CreatedAt:  now,
		Items:      make([]domain.LineItem, 0, len(lines)),
	}
	for _, line := range lines {
		product := products[line.UPC]
		order.Items = append(order.Items, domain.LineItem{
			ID:         uuid.NewString(),
			UPC:        line.UPC,
			Qty:        line.Qty,
			PriceMinor: product.PriceMinor,
			CreatedAt:  now,
		})
		order.AmountMinor += int64(line.Qty) * product.PriceMinor
	}
	return order
}

// enqueuePlacedEvent ставит событие order.placed в transactional outbox
// в рамках той же транзакции, что и сам заказ. Payload — опубликованная
// схема kafka.OrderPlacedEvent, по ней декодируют потребители.
func (b *Builder) enqueuePlacedEvent(ctx context.Context, tx domain.Tx, order domain.Order) error {
	lines := make([]kafka.OrderPlacedLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, kafka.OrderPlacedLine{
			UPC:        item.UPC,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}
	event := kafka.NewOrderPlacedEvent(order.ID, order.CustomerID, order.AmountMinor, lines)

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return tx.EnqueueOutbox(ctx, domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(event.EventType),
		Payload:       data,
	})
}

func (b *Builder) recordError(customerID string, err error) {
	switch {
	case domain.IsValidationError(err):
		b.logger.WithError(err).WithField("customer_id", customerID).Warn("place order rejected")
	default:
		b.logger.WithError(err).WithField("customer_id", customerID).Error("place order failed")
	}
	b.recordFailure(failureReason(err))
}

func (b *Builder) recordFailure(reason string) {
	if b.metrics != nil {
		b.metrics.RecordOrderFailure(reason)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownCustomer):
		return failureUnknownCustomer
	case errors.Is(err, domain.ErrUnknownProduct):
		return failureUnknownProduct
	case errors.Is(err, domain.ErrEmptyOrder):
		return failureEmptyOrder
	case errors.Is(err, domain.ErrInvalidQuantity):
		return failureInvalidQuantity
	case errors.Is(err, domain.ErrInsufficientStock):
		return failureInsufficientStock
	default:
		return failureStore
	}
}

func sortedUPCs(totals map[string]int32) []string {
	upcs := make([]string, 0, len(totals))
	for upc := range totals {
		upcs = append(upcs, upc)
	}
	sort.Strings(upcs)
	return upcs
}
