package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/models/dtos"
	"clientflow/leadboard/internal/models/entities"
)

func TestSalesNavigatorHandler_Passthrough(t *testing.T) {
	tests := []struct {
		name         string
		upstreamCode int
		upstreamBody string
		wantCode     int
		wantBody     string
	}{
		{"success flag overrides status", http.StatusInternalServerError, `{"success":true}`, http.StatusOK, `{"success":true}`},
		{"data success string", http.StatusAccepted, `{"data":"success"}`, http.StatusOK, `{"data":"success"}`},
		{"upstream failure kept", http.StatusBadGateway, `{"error":"actor busy"}`, http.StatusBadGateway, `{"error":"actor busy"}`},
		{"plain text body wrapped", http.StatusTeapot, `not json`, http.StatusTeapot, `{"message":"not json"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPayload map[string]string
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&gotPayload)
				w.WriteHeader(tt.upstreamCode)
				_, _ = io.WriteString(w, tt.upstreamBody)
			}))
			defer upstream.Close()

			cfg := config.Default()
			cfg.Webhooks.SalesNavigatorURL = upstream.URL
			deps := setupTestDeps(t, cfg)

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/webhook/sales-navigator",
				strings.NewReader(`{"searchName":"CTOs","salesNavUrl":"https://www.linkedin.com/sales/search/people?q=1"}`))
			SalesNavigatorHandler(deps).ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if got := strings.TrimSpace(rr.Body.String()); got != tt.wantBody {
				t.Errorf("Expected body %s, got %s", tt.wantBody, got)
			}
			if gotPayload["searchName"] != "CTOs" {
				t.Errorf("Expected search name forwarded, got %v", gotPayload)
			}
		})
	}
}

func TestSalesNavigatorHandler_Errors(t *testing.T) {
	deps := setupTestDeps(t, config.Default())

	rr, resp := serve(t, http.MethodPost, "/api/webhook/sales-navigator", SalesNavigatorHandler(deps),
		"/api/webhook/sales-navigator", `{"searchName":"CTOs"}`)
	if rr.Code != http.StatusBadRequest || resp.Error != constants.MsgSalesNavRequired {
		t.Errorf("Expected 400 %q, got %d %q", constants.MsgSalesNavRequired, rr.Code, resp.Error)
	}

	rr, resp = serve(t, http.MethodPost, "/api/webhook/sales-navigator", SalesNavigatorHandler(deps),
		"/api/webhook/sales-navigator", `{"searchName":"CTOs","salesNavUrl":"https://x"}`)
	if rr.Code != http.StatusInternalServerError || resp.Error != constants.MsgWebhookNotConfigured {
		t.Errorf("Expected 500 %q, got %d %q", constants.MsgWebhookNotConfigured, rr.Code, resp.Error)
	}
}

type callbackHook struct {
	mu       sync.Mutex
	payloads []map[string]string
}

func (h *callbackHook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload map[string]string
	_ = json.NewDecoder(r.Body).Decode(&payload)
	h.mu.Lock()
	h.payloads = append(h.payloads, payload)
	h.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (h *callbackHook) received() []map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]string(nil), h.payloads...)
}

func TestExtractEmailsAndCallback(t *testing.T) {
	hook := &callbackHook{}
	upstream := httptest.NewServer(hook)
	defer upstream.Close()

	cfg := config.Default()
	cfg.Webhooks.EmailExtractionURL = upstream.URL
	cfg.Callback.PublicBaseURL = "https://leads.example.com"
	deps := setupTestDeps(t, cfg)

	tableID := importTable(t, deps, "Leads", 1)
	rowID := firstRow(t, deps, tableID)["id"]
	start := balanceOf(t, deps)

	rr, resp := serve(t, http.MethodPost, "/api/tables/{id}/extract-emails", ExtractEmailsHandler(deps),
		"/api/tables/"+tableID+"/extract-emails", fmt.Sprintf(`{"rowIds":[%q]}`, rowID))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var result dtos.EnrichmentResponse
	dataAs(t, resp, &result)
	if result.Triggered != 1 || result.Mode != "webhook" {
		t.Fatalf("Unexpected enrichment result %+v", result)
	}

	payloads := hook.received()
	if len(payloads) != 1 {
		t.Fatalf("Expected 1 webhook call, got %d", len(payloads))
	}
	callbackURL := payloads[0]["callbackUrl"]
	prefix := "https://leads.example.com/api/webhook/callback/email?token="
	if !strings.HasPrefix(callbackURL, prefix) {
		t.Fatalf("Unexpected callback url %q", callbackURL)
	}
	token := strings.TrimPrefix(callbackURL, prefix)

	pattern := "/api/webhook/callback/{kind}"
	target := "/api/webhook/callback/email?token=" + token

	rr, _ = serve(t, http.MethodPost, pattern, WebhookCallbackHandler(deps), target, `{"value":"lead0@initech.com"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 from callback, got %d: %s", rr.Code, rr.Body.String())
	}
	if row := firstRow(t, deps, tableID); row["Email"] != "lead0@initech.com" {
		t.Errorf("Expected email to be stored, got %q", row["Email"])
	}
	if got := balanceOf(t, deps); got != start-constants.CostEmailExtraction {
		t.Errorf("Expected balance %d, got %d", start-constants.CostEmailExtraction, got)
	}

	rr, resp = serve(t, http.MethodPost, pattern, WebhookCallbackHandler(deps), target, `{"value":"again@initech.com"}`)
	if rr.Code != http.StatusUnauthorized || resp.Error != constants.MsgCallbackRejected {
		t.Errorf("Expected reused token to be rejected, got %d %q", rr.Code, resp.Error)
	}
}

func TestWebhookCallbackHandler_Rejections(t *testing.T) {
	deps := setupTestDeps(t, config.Default())
	pattern := "/api/webhook/callback/{kind}"

	rr, resp := serve(t, http.MethodPost, pattern, WebhookCallbackHandler(deps), "/api/webhook/callback/email?token=bogus", `{"value":"x@y.io"}`)
	if rr.Code != http.StatusUnauthorized || resp.Error != constants.MsgCallbackRejected {
		t.Errorf("Expected 401, got %d %q", rr.Code, resp.Error)
	}

	rr, resp = serve(t, http.MethodPost, pattern, WebhookCallbackHandler(deps), "/api/webhook/callback/phone?token=bogus", `{"value":"x"}`)
	if rr.Code != http.StatusBadRequest || resp.Error != constants.MsgUnknownCallback {
		t.Errorf("Expected 400 %q, got %d %q", constants.MsgUnknownCallback, rr.Code, resp.Error)
	}

	rr, resp = serve(t, http.MethodPost, pattern, WebhookCallbackHandler(deps), "/api/webhook/callback/ai-email?token=bogus", `{"value":"  "}`)
	if rr.Code != http.StatusBadRequest || resp.Error != constants.MsgCallbackValue {
		t.Errorf("Expected 400 %q, got %d %q", constants.MsgCallbackValue, rr.Code, resp.Error)
	}
}

func TestEnrichmentHandlers_Gating(t *testing.T) {
	cfg := config.Default()
	cfg.Webhooks.EmailExtractionURL = "http://127.0.0.1:1/unused"
	deps := setupTestDeps(t, cfg)
	tableID := importTable(t, deps, "Leads", 1)
	rowID := firstRow(t, deps, tableID)["id"]

	rr, resp := serve(t, http.MethodPost, "/api/tables/{id}/extract-emails", ExtractEmailsHandler(deps),
		"/api/tables/"+tableID+"/extract-emails", `{"rowIds":[]}`)
	if rr.Code != http.StatusBadRequest || resp.Error != constants.MsgRowIDsRequired {
		t.Errorf("Expected 400 %q, got %d %q", constants.MsgRowIDsRequired, rr.Code, resp.Error)
	}

	balance := balanceOf(t, deps)
	if _, err := deps.Services.Credits.Deduct(t.Context(), balance, constants.CreditReasonManual); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rr, resp = serve(t, http.MethodPost, "/api/tables/{id}/extract-emails", ExtractEmailsHandler(deps),
		"/api/tables/"+tableID+"/extract-emails", fmt.Sprintf(`{"rowIds":[%q]}`, rowID))
	if rr.Code != http.StatusPaymentRequired || resp.Error != constants.MsgInsufficientCredits {
		t.Errorf("Expected 402, got %d %q", rr.Code, resp.Error)
	}

	rr, resp = serve(t, http.MethodPost, "/api/tables/{id}/generate-ai-emails", GenerateAIEmailsHandler(deps),
		"/api/tables/"+tableID+"/generate-ai-emails", fmt.Sprintf(`{"rowIds":[%q]}`, rowID))
	if rr.Code != http.StatusInternalServerError || resp.Error != constants.MsgWebhookNotConfigured {
		t.Errorf("Expected 500 %q, got %d %q", constants.MsgWebhookNotConfigured, rr.Code, resp.Error)
	}
}

func TestRunScraperHandler_Validation(t *testing.T) {
	deps := setupTestDeps(t, config.Default())

	rr, resp := serve(t, http.MethodPost, "/api/run-scraper", RunScraperHandler(deps), "/api/run-scraper", `{"searchName":"x","searchUrl":"y"}`)
	if rr.Code != http.StatusBadRequest || resp.Error != constants.MsgScraperRequired {
		t.Errorf("Expected 400 %q, got %d %q", constants.MsgScraperRequired, rr.Code, resp.Error)
	}
}

func TestRunScraperHandler_FailedRun(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"id":"run-9","status":"FAILED","defaultDatasetId":"ds-9"}}`)
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.Apify.BaseURL = upstream.URL
	cfg.Apify.Token = "token"
	cfg.Apify.ActorID = "actor"
	deps := setupTestDeps(t, cfg)

	rr, resp := serve(t, http.MethodPost, "/api/run-scraper", RunScraperHandler(deps), "/api/run-scraper",
		`{"searchName":"x","searchUrl":"y","liAt":"cookie"}`)
	if rr.Code != http.StatusBadGateway || resp.Error != constants.MsgScrapingFailed {
		t.Fatalf("Expected 502 %q, got %d %q", constants.MsgScrapingFailed, rr.Code, resp.Error)
	}
	if !strings.Contains(resp.Details, "run-9") || !strings.Contains(resp.Details, "FAILED") {
		t.Errorf("Expected run id and status in details, got %q", resp.Details)
	}
}

func TestImportSpreadsheetHandler_Errors(t *testing.T) {
	deps := setupTestDeps(t, config.Default())
	pattern := "/api/import-spreadsheet"

	rr, resp := serve(t, http.MethodPost, pattern, ImportSpreadsheetHandler(deps), pattern, `{}`)
	if rr.Code != http.StatusBadRequest || resp.Error != constants.MsgSpreadsheetRequired {
		t.Errorf("Expected 400 %q, got %d %q", constants.MsgSpreadsheetRequired, rr.Code, resp.Error)
	}

	rr, resp = serve(t, http.MethodPost, pattern, ImportSpreadsheetHandler(deps), pattern, `{"spreadsheetUrl":"https://example.com/nothing"}`)
	if rr.Code != http.StatusBadRequest || resp.Error != constants.MsgInvalidSheetsURL {
		t.Errorf("Expected 400 %q, got %d %q", constants.MsgInvalidSheetsURL, rr.Code, resp.Error)
	}

	rr, resp = serve(t, http.MethodPost, pattern, ImportSpreadsheetHandler(deps), pattern,
		`{"spreadsheetUrl":"https://docs.google.com/spreadsheets/d/abc123/edit"}`)
	if rr.Code != http.StatusInternalServerError || resp.Error != constants.MsgSheetsNotConfigured {
		t.Errorf("Expected 500 %q, got %d %q", constants.MsgSheetsNotConfigured, rr.Code, resp.Error)
	}
}

func TestImportSpreadsheetHandler_AccessDenied(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"The caller does not have permission"}}`)
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.Sheets.BaseURL = upstream.URL
	cfg.Sheets.APIKey = "key"
	deps := setupTestDeps(t, cfg)

	rr, resp := serve(t, http.MethodPost, "/api/import-spreadsheet", ImportSpreadsheetHandler(deps), "/api/import-spreadsheet",
		`{"spreadsheetUrl":"https://docs.google.com/spreadsheets/d/private1/edit"}`)
	if rr.Code != http.StatusForbidden || resp.Error != constants.MsgSheetsAccessDenied {
		t.Errorf("Expected 403 %q, got %d %q", constants.MsgSheetsAccessDenied, rr.Code, resp.Error)
	}
}

func TestHealthCheckHandler(t *testing.T) {
	deps := setupTestDeps(t, config.Default())

	rr := httptest.NewRecorder()
	HealthCheckHandler(deps, time.Now().Add(-time.Minute)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var health entities.HealthCheckResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if health.Status != "ok" || health.Services["database"].Status != "ok" || health.Services["cache"].Status != "ok" {
		t.Errorf("Unexpected health %+v", health)
	}
}
