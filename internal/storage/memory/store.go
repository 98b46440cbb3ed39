package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	status     string
	attemptCnt int
	createdAt  time.Time
	updatedAt  time.Time
}

// Store — общее in-memory состояние всех репозиториев: каталог, покупатели,
// журнал заказов и outbox. Используется для локальной разработки и тестов.
// Все мутации идут через unit of work, который сериализуется на mu.
type Store struct {
	mu               sync.RWMutex
	products         map[string]domain.Product
	customers        map[string]domain.Customer
	customersByPhone map[string]string
	orders           map[string]domain.Order
	outbox           map[string]*outboxRecord
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products:         make(map[string]domain.Product),
		customers:        make(map[string]domain.Customer),
		customersByPhone: make(map[string]string),
		orders:           make(map[string]domain.Order),
		outbox:           make(map[string]*outboxRecord),
	}
}
