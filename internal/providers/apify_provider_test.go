package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestApify(url string) *ApifyProvider {
	return &ApifyProvider{
		BaseURL: url,
		Token:   "test-token",
		ActorID: "acme~scraper",
		Client:  &http.Client{},
	}
}

func TestApifyProvider_StartRun_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/acts/acme~scraper/runs" {
			t.Errorf("Expected path /acts/acme~scraper/runs, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "test-token" {
			t.Errorf("Expected token query parameter")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"run-1","status":"RUNNING","defaultDatasetId":"ds-1"}}`))
	}))
	defer server.Close()

	run, status, err := newTestApify(server.URL).StartRun(context.Background(), map[string]string{"searchUrl": "u"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", status)
	}
	if run.ID != "run-1" || run.DefaultDatasetID != "ds-1" {
		t.Errorf("Unexpected run %+v", run)
	}
	if run.Terminal() {
		t.Error("Expected RUNNING to be non-terminal")
	}
}

func TestApifyProvider_StartRun_MissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	_, _, err := newTestApify(server.URL).StartRun(context.Background(), nil)
	if err == nil {
		t.Fatal("Expected error for run without id")
	}
}

func TestApifyProvider_NotConfigured(t *testing.T) {
	p := &ApifyProvider{BaseURL: "http://unused", Client: &http.Client{}}

	_, status, err := p.GetRun(context.Background(), "run-1")
	if err == nil {
		t.Fatal("Expected error when token is missing")
	}
	if status != 0 {
		t.Errorf("Expected status 0, got %d", status)
	}

	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Code != "NOT_CONFIGURED" {
		t.Errorf("Expected NOT_CONFIGURED provider error, got %v", err)
	}
}

func TestApifyProvider_GetDatasetItems_KeepsKeyOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/datasets/ds-1/items" {
			t.Errorf("Expected dataset items path, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("clean") != "true" {
			t.Errorf("Expected clean=true")
		}
		w.Write([]byte(`[{"zeta":"z","alpha":"a"},{"firstName":"Ada"}]`))
	}))
	defer server.Close()

	items, _, err := newTestApify(server.URL).GetDatasetItems(context.Background(), "ds-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	keys := items[0].Keys()
	if len(keys) != 2 || keys[0] != "zeta" || keys[1] != "alpha" {
		t.Errorf("Expected source key order, got %v", keys)
	}
}

func TestApifyProvider_GetRun_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer server.Close()

	_, status, err := newTestApify(server.URL).GetRun(context.Background(), "run-1")
	if err == nil {
		t.Fatal("Expected error for 401")
	}
	if status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", status)
	}

	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Code != "INVALID_API_KEY" {
		t.Errorf("Expected INVALID_API_KEY, got %v", err)
	}
}

func TestApifyRun_Terminal(t *testing.T) {
	for _, s := range []string{"SUCCEEDED", "FAILED", "TIMED-OUT", "ABORTED"} {
		if !(ApifyRun{Status: s}).Terminal() {
			t.Errorf("Expected %s to be terminal", s)
		}
	}
	for _, s := range []string{"READY", "RUNNING", "TIMING-OUT", "ABORTING"} {
		if (ApifyRun{Status: s}).Terminal() {
			t.Errorf("Expected %s to be non-terminal", s)
		}
	}
}
