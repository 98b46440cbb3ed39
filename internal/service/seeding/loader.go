package seeding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderdesk/internal/metrics"
)

// ErrInvalidBatch возвращается, если хотя бы одна запись батча нарушает
// инварианты. Батч отклоняется целиком.
var ErrInvalidBatch = errors.New("seed batch contains invalid records")

// Batch — набор товаров и покупателей для начальной загрузки.
type Batch struct {
	Products  []domain.Product
	Customers []domain.Customer
}

// Result описывает исход загрузки. Customers возвращаются с заполненными
// ID, присвоенными хранилищем (для уже существующих — ранее присвоенными).
type Result struct {
	ProductsInserted int
	ProductsSkipped  int
	CustomersCreated int
	CustomersExisted int
	Customers        []domain.Customer
}

// Loader выполняет идемпотентную начальную загрузку справочных данных.
// Политика идемпотентности: дубликаты по натуральному ключу (UPC товара,
// телефон покупателя) пропускаются, повторная загрузка того же батча
// оставляет содержимое хранилища неизменным.
type Loader struct {
	uow     domain.UnitOfWork
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewLoader создаёт рабочий экземпляр загрузчика.
func NewLoader(uow domain.UnitOfWork, logger *log.Entry) *Loader {
	if logger == nil {
		logger = log.New().WithField("component", "seeding")
	}
	return &Loader{
		uow:     uow,
		logger:  logger,
		metrics: metrics.NewOrderMetrics(),
	}
}

// NewLoaderWithoutMetrics создаёт загрузчик без метрик (для тестов).
func NewLoaderWithoutMetrics(uow domain.UnitOfWork, logger *log.Entry) *Loader {
	if logger == nil {
		logger = log.New().WithField("component", "seeding")
	}
	return &Loader{
		uow:    uow,
		logger: logger,
	}
}

// Load вставляет батч как одну транзакцию: либо применяется целиком,
// либо хранилище остаётся нетронутым.
func (l *Loader) Load(ctx context.Context, batch Batch) (Result, error) {
	if err := validateBatch(batch); err != nil {
		return Result{}, err
	}

	var result Result
	err := l.uow.WithinTx(ctx, func(tx domain.Tx) error {
		for _, product := range batch.Products {
			inserted, err := tx.InsertProduct(ctx, product)
			if err != nil {
				return fmt.Errorf("insert product %s: %w", product.UPC, err)
			}
			if inserted {
				result.ProductsInserted++
			} else {
				result.ProductsSkipped++
			}
		}

		for _, customer := range batch.Customers {
			stored, created, err := tx.EnsureCustomer(ctx, customer)
			if err != nil {
				return fmt.Errorf("ensure customer %s %s: %w", customer.LastName, customer.FirstName, err)
			}
			if created {
				result.CustomersCreated++
			} else {
				result.CustomersExisted++
			}
			result.Customers = append(result.Customers, stored)
		}

		return l.enqueueSeededEvent(ctx, tx, &result)
	})
	if err != nil {
		l.logger.WithError(err).Error("seed batch failed")
		return Result{}, err
	}

	if l.metrics != nil {
		l.metrics.RecordProductsSeeded(result.ProductsInserted)
		l.metrics.RecordCustomersSeeded(result.CustomersCreated)
	}
	l.logger.WithFields(log.Fields{
		"products_inserted": result.ProductsInserted,
		"products_skipped":  result.ProductsSkipped,
		"customers_created": result.CustomersCreated,
		"customers_existed": result.CustomersExisted,
	}).Info("seed batch loaded")

	return result, nil
}

// enqueueSeededEvent ставит событие catalog.seeded в outbox той же
// транзакцией. Payload — опубликованная схема kafka.CatalogSeededEvent.
func (l *Loader) enqueueSeededEvent(ctx context.Context, tx domain.Tx, result *Result) error {
	event := kafka.NewCatalogSeededEvent(result.ProductsInserted, result.ProductsSkipped, result.CustomersCreated)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return tx.EnqueueOutbox(ctx, domain.OutboxMessage{
		AggregateType: "catalog",
		AggregateID:   "seed",
		EventType:     string(event.EventType),
		Payload:       payload,
	})
}

// validateBatch проверяет инварианты каждой записи до открытия транзакции.
func validateBatch(batch Batch) error {
	for i := range batch.Products {
		if errs := batch.Products[i].ValidateInvariants(); len(errs) > 0 {
			return fmt.Errorf("%w: product[%d] %s: %v", ErrInvalidBatch, i, batch.Products[i].UPC, errs)
		}
	}
	for i := range batch.Customers {
		if batch.Customers[i].ID != "" {
			// ID присваивает хранилище; заранее заполненный ID — ошибка вызова.
			return fmt.Errorf("%w: customer[%d] has pre-assigned id", ErrInvalidBatch, i)
		}
		if errs := batch.Customers[i].ValidateInvariants(); len(errs) > 0 {
			return fmt.Errorf("%w: customer[%d] %s: %v", ErrInvalidBatch, i, batch.Customers[i].LastName, errs)
		}
	}
	return nil
}
