package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clientflow/leadboard/internal/api"
	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/db"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/metrics"
	"clientflow/leadboard/internal/routes"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Leadboard starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.Database.Driver,
		"cache_backend", cfg.Cache.Backend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	orm, err := db.InitORM(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to connect to database (GORM)", "error", err)
	}
	if err := db.Migrate(orm); err != nil {
		logging.Fatal("Failed to migrate database", "error", err)
	}

	if err := db.InitSQL(cfg.Database, orm); err != nil {
		logging.Fatal("Failed to connect to database (sqlx)", "error", err)
	}
	logging.Info("Connected to database", "driver", cfg.Database.Driver)

	var cache common.CacheInterface
	switch cfg.Cache.Backend {
	case "redis":
		cache = common.NewRedisCacheService(common.NewRedisClient(cfg.Redis))
	default:
		cache = common.NewCacheService(cfg.Cache.TableListTTL, cfg.Cache.CleanupInterval)
	}
	defer cache.Close()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := api.InitDependencies(ctx, cfg, orm, db.DB, cache, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, cfg, prometheus.DefaultGatherer, upSince)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Graceful shutdown failed", "error", err)
		}
	}()

	logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Server stopped", "error", err)
	}
	logging.Info("Server stopped")
}
