package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/db"
	"clientflow/leadboard/internal/metrics"
	"clientflow/leadboard/internal/models/dtos"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Setup test dependencies over an in-memory database
func setupTestDeps(t *testing.T, cfg config.Config) *Dependencies {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlPool, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql pool: %v", err)
	}
	sqlPool.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlPool.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	sqlDB, err := db.WrapORM(gdb, "sqlite3")
	if err != nil {
		t.Fatalf("Failed to wrap ORM: %v", err)
	}

	cfg.Callback.Secret = "api-test-secret"
	deps, err := InitDependencies(
		context.Background(),
		cfg,
		gdb,
		sqlDB,
		common.NewCacheService(time.Minute, time.Minute),
		metrics.NewMetricsRegistry(prometheus.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return deps
}

// serve routes one request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern string, handler http.HandlerFunc, target string, body string) (*httptest.ResponseRecorder, dtos.APIResponse) {
	t.Helper()

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, handler)

	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var resp dtos.APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return rr, resp
}

// dataAs re-decodes the envelope's data into out.
func dataAs(t *testing.T, resp dtos.APIResponse, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("Failed to encode data: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("Failed to decode data %s: %v", raw, err)
	}
}

func leadsJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"firstName":"Lead%d","lastName":"Tester","companyName":"Initech"}`, i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

// importTable creates a table through the handler and returns its id.
func importTable(t *testing.T, deps *Dependencies, name string, n int) string {
	t.Helper()
	body := fmt.Sprintf(`{"tableName":%q,"data":%s}`, name, leadsJSON(n))
	rr, resp := serve(t, http.MethodPost, "/api/tables/import", ImportTableHandler(deps), "/api/tables/import", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 from import, got %d: %s", rr.Code, rr.Body.String())
	}
	var result dtos.ImportResponse
	dataAs(t, resp, &result)
	return result.TableConfigID
}

func firstRow(t *testing.T, deps *Dependencies, tableID string) dtos.GridRow {
	t.Helper()
	detail, err := deps.Services.Tables.Get(context.Background(), tableID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(detail.Rows) == 0 {
		t.Fatal("Expected at least one row")
	}
	return detail.Rows[0]
}

func balanceOf(t *testing.T, deps *Dependencies) int64 {
	t.Helper()
	balance, err := deps.Services.Credits.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("Failed to read balance: %v", err)
	}
	return balance
}
