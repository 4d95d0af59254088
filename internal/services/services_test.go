package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/db"
	"clientflow/leadboard/internal/db/repositories"
	"clientflow/leadboard/internal/metrics"
	"clientflow/leadboard/internal/normalize"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return gdb
}

type testEnv struct {
	orm      *gorm.DB
	cache    *common.CacheService
	metrics  *metrics.MetricsRegistry
	tables   *repositories.TableConfigRepo
	rows     *repositories.TableRowRepo
	credits  *CreditService
	importer *ImportService
	tableSvc *TableService
}

func newTestEnv(t *testing.T) *testEnv {
	gdb := setupTestDB(t)

	sqlDB, err := db.WrapORM(gdb, "sqlite3")
	if err != nil {
		t.Fatalf("Failed to wrap ORM: %v", err)
	}

	cache := common.NewCacheService(time.Minute, time.Minute)
	metricsReg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	tables := repositories.NewTableConfigRepo(gdb)
	rows := repositories.NewTableRowRepo(gdb)
	credits := NewCreditService(repositories.NewCreditsRepo(sqlDB), metricsReg)

	return &testEnv{
		orm:      gdb,
		cache:    cache,
		metrics:  metricsReg,
		tables:   tables,
		rows:     rows,
		credits:  credits,
		importer: NewImportService(tables, rows, credits, cache, metricsReg),
		tableSvc: NewTableService(tables, rows, credits, cache, config.Default().Cache.TableListTTL, metricsReg),
	}
}

func (env *testEnv) balance(t *testing.T) int64 {
	t.Helper()
	balance, err := env.credits.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("Failed to read balance: %v", err)
	}
	return balance
}

func leadRecords(n int) []normalize.Record {
	records := make([]normalize.Record, n)
	for i := range records {
		records[i] = normalize.NewRecord(
			"firstName", fmt.Sprintf("Lead%d", i),
			"lastName", "Tester",
			"companyName", "Initech",
		)
	}
	return records
}

func assertValidation(t *testing.T, err error, message string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if verr.Message != message {
		t.Errorf("Expected message %q, got %q", message, verr.Message)
	}
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	var nerr *NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}
