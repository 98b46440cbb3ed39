package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderPlaced EventType = "order.placed"

	// Catalog события
	EventTypeCatalogSeeded EventType = "catalog.seeded"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "orderdesk.order.events"
	TopicDeadLetterQueue = "orderdesk.dlq" // Dead Letter Queue для failed messages
)

// OrderPlacedEvent представляет событие успешно оформленного заказа.
type OrderPlacedEvent struct {
	EventType   EventType              `json:"event_type"`
	OrderID     string                 `json:"order_id"`
	CustomerID  string                 `json:"customer_id"`
	AmountMinor int64                  `json:"amount_minor"`
	Lines       []OrderPlacedLine      `json:"lines"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// OrderPlacedLine — одна позиция в событии оформления заказа.
type OrderPlacedLine struct {
	UPC        string `json:"upc"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

// NewOrderPlacedEvent создаёт событие оформленного заказа.
func NewOrderPlacedEvent(orderID, customerID string, amountMinor int64, lines []OrderPlacedLine) OrderPlacedEvent {
	return OrderPlacedEvent{
		EventType:   EventTypeOrderPlaced,
		OrderID:     orderID,
		CustomerID:  customerID,
		AmountMinor: amountMinor,
		Lines:       lines,
		Timestamp:   time.Now().UTC(),
	}
}

// CatalogSeededEvent представляет завершённый батч сидинга.
type CatalogSeededEvent struct {
	EventType        EventType `json:"event_type"`
	ProductsInserted int       `json:"products_inserted"`
	ProductsSkipped  int       `json:"products_skipped"`
	CustomersCreated int       `json:"customers_created"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewCatalogSeededEvent создаёт событие завершённого сидинга.
func NewCatalogSeededEvent(productsInserted, productsSkipped, customersCreated int) CatalogSeededEvent {
	return CatalogSeededEvent{
		EventType:        EventTypeCatalogSeeded,
		ProductsInserted: productsInserted,
		ProductsSkipped:  productsSkipped,
		CustomersCreated: customersCreated,
		Timestamp:        time.Now().UTC(),
	}
}
