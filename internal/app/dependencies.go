package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/storage/memory"
	"github.com/vladislavdragonenkov/orderdesk/internal/storage/postgres"
)

// Dependencies содержит собранный по конфигурации слой хранения.
type Dependencies struct {
	UnitOfWork domain.UnitOfWork
	Products   domain.ProductRepository
	Customers  domain.CustomerRepository
	Orders     domain.OrderRepository
	Outbox     domain.OutboxRepository
	Logger     *log.Entry

	// PingStore проверяет доступность хранилища; для memory всегда nil error.
	PingStore func(ctx context.Context) error
	// CloseStore освобождает ресурсы хранилища.
	CloseStore func() error
}

// NewDependencies инициализирует хранилище согласно cfg.StorageDriver.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		store := memory.NewStore()
		logger.Info("using in-memory storage")
		return &Dependencies{
			UnitOfWork: memory.NewUnitOfWork(store),
			Products:   memory.NewProductRepository(store),
			Customers:  memory.NewCustomerRepository(store),
			Orders:     memory.NewOrderRepository(store),
			Outbox:     memory.NewOutboxRepository(store),
			Logger:     logger,
			PingStore:  func(context.Context) error { return nil },
			CloseStore: func() error { return nil },
		}, nil

	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		logger.Info("using postgres storage")
		return &Dependencies{
			UnitOfWork: postgres.NewUnitOfWork(store),
			Products:   postgres.NewProductRepository(store),
			Customers:  postgres.NewCustomerRepository(store),
			Orders:     postgres.NewOrderRepository(store),
			Outbox:     postgres.NewOutboxRepository(store),
			Logger:     logger,
			PingStore:  store.Ping,
			CloseStore: store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}
}
