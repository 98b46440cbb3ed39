package domain

import (
	"context"
	"time"
)

// Tx — типизированный unit of work: набор операций, выполняющихся в рамках
// одной транзакции. Экземпляр валиден только внутри WithinTx; все изменения
// применяются атомарно на commit и полностью откатываются при ошибке.
type Tx interface {
	// CustomerByID возвращает покупателя или ErrUnknownCustomer.
	CustomerByID(ctx context.Context, id string) (Customer, error)
	// ProductByUPC возвращает товар или ErrUnknownProduct. В SQL-реализации
	// строка товара блокируется до конца транзакции (FOR UPDATE), поэтому
	// проверка остатка и декремент образуют один атомарный read-modify-write.
	ProductByUPC(ctx context.Context, upc string) (Product, error)
	// DecrementStock уменьшает остаток товара на qty. Возвращает
	// InsufficientStockError, если остатка не хватает, и ErrUnknownProduct,
	// если товара нет. Остаток никогда не уходит в минус.
	DecrementStock(ctx context.Context, upc string, qty int32) error
	// InsertOrder сохраняет заказ вместе с позициями.
	InsertOrder(ctx context.Context, order Order) error
	// InsertProduct добавляет товар в каталог. Возвращает false без ошибки,
	// если товар с таким UPC уже существует (политика идемпотентного сидинга).
	InsertProduct(ctx context.Context, product Product) (bool, error)
	// EnsureCustomer вставляет покупателя, присваивая ему новый ID, либо
	// возвращает уже существующую запись с тем же телефоном. ID результата
	// всегда заполнен; второй результат — true, если запись создана.
	EnsureCustomer(ctx context.Context, customer Customer) (Customer, bool, error)
	// EnqueueOutbox ставит событие в transactional outbox в рамках той же
	// транзакции, что и породившие его изменения.
	EnqueueOutbox(ctx context.Context, msg OutboxMessage) error
}

// UnitOfWork открывает транзакцию, передаёт её в fn и гарантированно
// завершает: commit при nil, rollback при любой ошибке или панике.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет читать и помечать события для последующей публикации.
type OutboxRepository interface {
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
