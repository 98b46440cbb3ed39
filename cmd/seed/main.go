package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/app"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/seeding"
)

const defaultTimeout = 30 * time.Second

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	dsn := flag.String("dsn", "", "PostgreSQL DSN (fallback: ORDERDESK_POSTGRES_DSN)")
	flag.Parse()

	cfg := app.DefaultConfig()
	cfg.SeedOnStart = false
	cfg.StorageDriver = app.StorageDriverPostgres
	cfg.PostgresDSN = *dsn
	if cfg.PostgresDSN == "" {
		cfg.PostgresDSN = os.Getenv("ORDERDESK_POSTGRES_DSN")
	}
	if cfg.PostgresDSN == "" {
		_, _ = fmt.Fprintln(os.Stderr, "ORDERDESK_POSTGRES_DSN (or -dsn) is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	deps, err := app.NewDependencies(ctx, cfg, log.WithField("component", "seed"))
	if err != nil {
		log.WithError(err).Fatal("инициализация хранилища")
	}
	defer func() {
		_ = deps.CloseStore()
	}()

	loader := seeding.NewLoader(deps.UnitOfWork, deps.Logger)
	result, err := loader.Load(ctx, seeding.DefaultBatch())
	if err != nil {
		log.WithError(err).Fatal("загрузка стартовых данных")
	}

	fmt.Printf("seed done: products inserted=%d skipped=%d, customers created=%d existed=%d\n",
		result.ProductsInserted, result.ProductsSkipped,
		result.CustomersCreated, result.CustomersExisted)
}
