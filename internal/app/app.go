package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/orderdesk/internal/health"
	"github.com/vladislavdragonenkov/orderdesk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/orderentry"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/outbox"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/seeding"
	"github.com/vladislavdragonenkov/orderdesk/internal/version"
)

// App — собранное приложение: хранилище, сервисы и фоновые воркеры.
type App struct {
	Config  Config
	Deps    *Dependencies
	Builder *orderentry.Builder
	Loader  *seeding.Loader

	producer *kafka.Producer
	relay    *outbox.Relay
	logger   *log.Entry
}

// New собирает приложение по конфигурации. При cfg.SeedOnStart загружает
// стартовый каталог (повторный запуск ничего не меняет).
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.WithField("component", "app")
	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Deps:    deps,
		Builder: orderentry.NewBuilder(deps.UnitOfWork, logger.WithField("component", "order-entry")),
		Loader:  seeding.NewLoader(deps.UnitOfWork, logger.WithField("component", "seeding")),
		logger:  logger,
	}

	if cfg.SeedOnStart {
		if _, err := a.Loader.Load(ctx, seeding.DefaultBatch()); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("seed on start: %w", err)
		}
	}

	// Kafka опционален: без брокеров события копятся в outbox.
	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err == nil && producer != nil {
		a.producer = producer
		a.relay = outbox.NewRelay(
			deps.Outbox,
			kafka.NewOutboxPublisher(producer, cfg.OrderEventsTopic),
			outbox.WithLogger(logger.WithField("component", "outbox-relay")),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, cfg.DLQTopic)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		)
	}

	return a, nil
}

// Run запускает HTTP-сервер метрик и outbox relay и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	healthHandler := healthcheck.NewHandler(version.String())
	healthHandler.RegisterChecker("storage", healthcheck.NewCheckerFunc(
		"storage", 2*time.Second, a.Deps.PingStore,
	))

	metricsSrv := startMetricsServer(ctx, a.Config.MetricsAddr, a.logger, healthHandler)

	relayDone := make(chan struct{})
	if a.relay != nil {
		go func() {
			defer close(relayDone)
			a.relay.Run(ctx)
		}()
	} else {
		close(relayDone)
	}

	<-ctx.Done()
	a.logger.Info("получен сигнал остановки")

	select {
	case <-relayDone:
	case <-time.After(5 * time.Second):
		a.logger.Warn("outbox relay не остановился за таймаут")
	}

	shutdownHTTP(metricsSrv, a.logger)
	return ctx.Err()
}

// Close освобождает ресурсы: Kafka producer и подключение к хранилищу.
func (a *App) Close() error {
	closeKafka(a.producer, a.logger)
	if a.Deps != nil && a.Deps.CloseStore != nil {
		return a.Deps.CloseStore()
	}
	return nil
}

// startMetricsServer запускает HTTP-обработчики /metrics и health-проб.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
