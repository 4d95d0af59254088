package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/db"
	"clientflow/leadboard/internal/db/repositories"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/metrics"
	"clientflow/leadboard/internal/services"

	"github.com/prometheus/client_golang/prometheus"
)

// credits_topup adds credits to the ledger without going through the HTTP API.
func main() {
	amount := flag.Int64("amount", 0, "credits to add")
	flag.Parse()

	if *amount <= 0 {
		log.Fatalf("-amount must be a positive number, got %d", *amount)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Close()

	orm, err := db.InitORM(cfg.Database)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(orm); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := db.InitSQL(cfg.Database, orm); err != nil {
		log.Fatalf("open sqlx: %v", err)
	}
	defer db.DB.Close()

	credits := services.NewCreditService(
		repositories.NewCreditsRepo(db.DB),
		metrics.NewMetricsRegistry(prometheus.NewRegistry()),
	)

	balance, err := credits.Topup(context.Background(), *amount)
	if err != nil {
		log.Fatalf("top up: %v", err)
	}

	fmt.Println("New balance:", balance)
}
