package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/providers"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	fail    map[string]bool
}

func (g *fakeGenerator) GenerateEmail(ctx context.Context, instructions string, lead providers.LeadProfile) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, instructions)
	g.mu.Unlock()
	if g.fail[lead.FirstName] {
		return "", errors.New("model overloaded")
	}
	return "Hello " + lead.FirstName, nil
}

// hookRecorder is a webhook endpoint that keeps every payload it receives
type hookRecorder struct {
	mu       sync.Mutex
	payloads []map[string]string
	failRow  string
}

func (h *hookRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload map[string]string
	json.NewDecoder(r.Body).Decode(&payload)
	h.mu.Lock()
	h.payloads = append(h.payloads, payload)
	h.mu.Unlock()
	if payload["rowId"] == h.failRow {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *hookRecorder) received() []map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]string(nil), h.payloads...)
}

func newEnrichment(env *testEnv, hookURL string, generator *providers.GeminiEmailGenerator) *EnrichmentService {
	return NewEnrichmentService(
		env.tables,
		env.rows,
		env.tableSvc,
		env.credits,
		providers.NewWebhookClient(),
		generator,
		common.NewCallbackSigner([]byte("test-secret"), env.cache),
		config.WebhookConfig{EmailExtractionURL: hookURL, AIEmailURL: hookURL, Concurrency: 3},
		config.CallbackConfig{PublicBaseURL: "https://leads.example.com/", TokenTTL: time.Hour},
		env.metrics,
	)
}

func rowIDs(t *testing.T, env *testEnv, tableID string) []string {
	t.Helper()
	rows, err := env.rows.ListByTable(context.Background(), tableID)
	if err != nil {
		t.Fatalf("Failed to list rows: %v", err)
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func tokenFromCallback(t *testing.T, callbackURL string) string {
	t.Helper()
	u, err := url.Parse(callbackURL)
	if err != nil {
		t.Fatalf("Bad callback URL %q: %v", callbackURL, err)
	}
	return u.Query().Get("token")
}

func TestEnrichmentService_ExtractEmails_CallbackFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := importFixture(t, env, "Extract", 2)
	ids := rowIDs(t, env, tableID)

	hook := &hookRecorder{}
	server := httptest.NewServer(hook)
	defer server.Close()

	svc := newEnrichment(env, server.URL, nil)
	resp, err := svc.ExtractEmails(ctx, tableID, ids)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Requested != 2 || resp.Triggered != 2 || resp.Mode != ModeWebhook {
		t.Errorf("Unexpected response %+v", resp)
	}
	payloads := hook.received()
	if len(payloads) != 2 {
		t.Fatalf("Expected 2 webhook calls, got %d", len(payloads))
	}

	balanceBefore := env.balance(t)

	payload := payloads[0]
	if !strings.HasPrefix(payload["callbackUrl"], "https://leads.example.com/api/webhook/callback/email?token=") {
		t.Fatalf("Unexpected callback URL %q", payload["callbackUrl"])
	}
	token := tokenFromCallback(t, payload["callbackUrl"])

	result, err := svc.HandleCallback(ctx, constants.CallbackKindEmail, token, " found@x.io ")
	if err != nil {
		t.Fatalf("Expected callback to be accepted, got %v", err)
	}
	row, err := env.rows.FindInTable(ctx, tableID, payload["rowId"])
	if err != nil || row == nil {
		t.Fatalf("Failed to reload row: %v", err)
	}
	if row.Email == nil || *row.Email != "found@x.io" {
		t.Errorf("Expected email written, got %v (result %+v)", row.Email, result)
	}
	if got := env.balance(t); got != balanceBefore-constants.CostEmailExtraction {
		t.Errorf("Expected charge on write, balance %d", got)
	}

	if _, err := svc.HandleCallback(ctx, constants.CallbackKindEmail, token, "again@x.io"); !errors.Is(err, ErrCallbackRejected) {
		t.Errorf("Expected reused token to be rejected, got %v", err)
	}
}

func TestEnrichmentService_HandleCallback_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := importFixture(t, env, "Callbacks", 1)
	rowID := firstRowID(t, env, tableID)
	svc := newEnrichment(env, "http://unused", nil)

	token, err := svc.signer.Sign(constants.CallbackKindAIEmail, tableID, rowID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}

	if _, err := svc.HandleCallback(ctx, constants.CallbackKindEmail, token, "x@y.z"); !errors.Is(err, ErrCallbackRejected) {
		t.Errorf("Expected kind mismatch to be rejected, got %v", err)
	}
	if _, err := svc.HandleCallback(ctx, constants.CallbackKindAIEmail, "garbage", "x"); !errors.Is(err, ErrCallbackRejected) {
		t.Errorf("Expected garbage token to be rejected, got %v", err)
	}

	_, err = svc.HandleCallback(ctx, constants.CallbackKind("sms"), token, "x")
	assertValidation(t, err, constants.MsgUnknownCallback)

	_, err = svc.HandleCallback(ctx, constants.CallbackKindAIEmail, token, "  ")
	assertValidation(t, err, constants.MsgCallbackValue)

	if _, err := svc.HandleCallback(ctx, constants.CallbackKindAIEmail, token, "Dear Lead0"); err != nil {
		t.Errorf("Expected matching token to be accepted after failed attempts, got %v", err)
	}
}

func TestEnrichmentService_ExtractEmails_InsufficientCredits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := importFixture(t, env, "Poor", 3)
	if _, err := env.credits.Deduct(ctx, env.balance(t)-5, constants.CreditReasonManual); err != nil {
		t.Fatalf("Failed to set balance: %v", err)
	}

	hook := &hookRecorder{}
	server := httptest.NewServer(hook)
	defer server.Close()

	_, err := newEnrichment(env, server.URL, nil).ExtractEmails(ctx, tableID, rowIDs(t, env, tableID))
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("Expected ErrInsufficientCredits, got %v", err)
	}
	if n := len(hook.received()); n != 0 {
		t.Errorf("Expected no webhook calls, got %d", n)
	}
}

func TestEnrichmentService_ExtractEmails_PartialWebhookFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := importFixture(t, env, "Flaky", 3)
	ids := rowIDs(t, env, tableID)

	hook := &hookRecorder{failRow: ids[1]}
	server := httptest.NewServer(hook)
	defer server.Close()

	resp, err := newEnrichment(env, server.URL, nil).ExtractEmails(ctx, tableID, ids)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Triggered != 2 {
		t.Errorf("Expected 2 triggered, got %d", resp.Triggered)
	}
	if len(resp.Failed) != 1 || resp.Failed[0] != ids[1] {
		t.Errorf("Expected %s to fail, got %v", ids[1], resp.Failed)
	}
}

func TestEnrichmentService_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := importFixture(t, env, "Checks", 1)
	ids := rowIDs(t, env, tableID)

	svc := newEnrichment(env, "", nil)

	_, err := svc.ExtractEmails(ctx, tableID, nil)
	assertValidation(t, err, constants.MsgRowIDsRequired)

	_, err = svc.ExtractEmails(ctx, "missing", ids)
	assertNotFound(t, err)

	_, err = svc.ExtractEmails(ctx, tableID, []string{"not-a-row"})
	assertNotFound(t, err)

	if _, err := svc.ExtractEmails(ctx, tableID, ids); !errors.Is(err, ErrWebhookNotConfigured) {
		t.Errorf("Expected ErrWebhookNotConfigured, got %v", err)
	}
}

func TestEnrichmentService_GenerateAIEmails_WithGenerator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := importFixture(t, env, "Gemini", 3)
	ids := rowIDs(t, env, tableID)
	if _, err := env.tableSvc.UpdateAIPrompt(ctx, tableID, "Mention our webinar."); err != nil {
		t.Fatalf("Failed to set prompt: %v", err)
	}

	gen := &fakeGenerator{fail: map[string]bool{"Lead2": true}}
	svc := newEnrichment(env, "", nil)
	svc.generator = gen
	start := env.balance(t)

	resp, err := svc.GenerateAIEmails(ctx, tableID, ids)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Mode != ModeGemini || resp.Completed != 2 || len(resp.Failed) != 1 {
		t.Errorf("Unexpected response %+v", resp)
	}
	for _, p := range gen.prompts {
		if p != "Mention our webinar." {
			t.Errorf("Expected table prompt, got %q", p)
		}
	}

	row, _ := env.rows.FindInTable(ctx, tableID, ids[0])
	if row.AIPersonalizedEmail == nil || *row.AIPersonalizedEmail != "Hello Lead0" {
		t.Errorf("Expected generated email, got %v", row.AIPersonalizedEmail)
	}
	if got := env.balance(t); got != start-2*constants.CostAIEmail {
		t.Errorf("Expected 2 credits charged, balance %d", got)
	}
}

func TestEnrichmentService_GenerateAIEmails_Webhook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tableID := importFixture(t, env, "Hooked", 1)

	hook := &hookRecorder{}
	server := httptest.NewServer(hook)
	defer server.Close()

	resp, err := newEnrichment(env, server.URL, nil).GenerateAIEmails(ctx, tableID, rowIDs(t, env, tableID))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Mode != ModeWebhook || resp.Triggered != 1 {
		t.Errorf("Unexpected response %+v", resp)
	}
	payloads := hook.received()
	if len(payloads) != 1 || !strings.Contains(payloads[0]["callbackUrl"], "/api/webhook/callback/ai-email?token=") {
		t.Errorf("Unexpected webhook payloads %v", payloads)
	}
}
