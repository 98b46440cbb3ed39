package kafka

import (
	"encoding/json"
	"testing"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

func domainMessage() domain.OutboxMessage {
	return domain.OutboxMessage{
		ID:            "msg-1",
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     string(EventTypeOrderPlaced),
		Payload:       []byte(`{"order_id":"order-1"}`),
	}
}

func TestNewOrderPlacedEvent(t *testing.T) {
	lines := []OrderPlacedLine{
		{UPC: "076174517163", Qty: 10, PriceMinor: 997},
	}
	event := NewOrderPlacedEvent("order-1", "customer-1", 9970, lines)

	if event.EventType != EventTypeOrderPlaced {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	var decoded OrderPlacedEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if decoded.OrderID != "order-1" || decoded.AmountMinor != 9970 {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
	if len(decoded.Lines) != 1 || decoded.Lines[0].UPC != "076174517163" {
		t.Fatalf("unexpected decoded lines: %+v", decoded.Lines)
	}
}

func TestNewCatalogSeededEvent(t *testing.T) {
	event := NewCatalogSeededEvent(11, 0, 7)

	if event.EventType != EventTypeCatalogSeeded {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.ProductsInserted != 11 || event.CustomersCreated != 7 {
		t.Fatalf("unexpected counters: %+v", event)
	}
}

func TestOutboxPublisher_NotInitialized(t *testing.T) {
	var publisher *OutboxTopicPublisher
	if err := publisher.Publish(domainMessage()); err == nil {
		t.Fatal("expected error from nil publisher")
	}
}
