package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/normalize"
)

// ApifyProvider starts scraper actor runs and reads their datasets
type ApifyProvider struct {
	BaseURL string
	Token   string
	ActorID string
	Client  *http.Client
}

// ApifyRun is the part of an actor run we act on
type ApifyRun struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Terminal reports whether the run has stopped
func (r ApifyRun) Terminal() bool {
	switch r.Status {
	case constants.RunStatusSucceeded, constants.RunStatusFailed, constants.RunStatusTimedOut, constants.RunStatusAborted:
		return true
	}
	return false
}

type apifyRunEnvelope struct {
	Data ApifyRun `json:"data"`
}

// NewApifyProvider creates a new Apify provider
func NewApifyProvider(cfg config.ApifyConfig) *ApifyProvider {
	return &ApifyProvider{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Token:   cfg.Token,
		ActorID: cfg.ActorID,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *ApifyProvider) rest() *restClient {
	return &restClient{service: "apify", client: p.Client}
}

func (p *ApifyProvider) checkConfig() error {
	if p.Token == "" || p.ActorID == "" {
		return &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "APIFY_TOKEN and APIFY_ACTOR_ID must be set",
		}
	}
	return nil
}

func (p *ApifyProvider) url(endpoint string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", p.Token)
	return p.BaseURL + endpoint + "?" + query.Encode()
}

// StartRun triggers the actor with the given input
func (p *ApifyProvider) StartRun(ctx context.Context, input interface{}) (*ApifyRun, int, error) {
	if err := p.checkConfig(); err != nil {
		return nil, 0, err
	}

	endpoint := fmt.Sprintf("/acts/%s/runs", url.PathEscape(p.ActorID))

	var result apifyRunEnvelope
	status, err := p.rest().doPost(ctx, endpoint, p.url(endpoint, nil), input, &result)
	if err != nil {
		return nil, status, err
	}
	if result.Data.ID == "" {
		return nil, status, &ProviderError{
			Code:       constants.ErrCodeInvalidDataFormat,
			Message:    "apify: run response has no id",
			StatusCode: status,
		}
	}

	return &result.Data, status, nil
}

// GetRun fetches the current state of a run
func (p *ApifyProvider) GetRun(ctx context.Context, runID string) (*ApifyRun, int, error) {
	if err := p.checkConfig(); err != nil {
		return nil, 0, err
	}

	endpoint := fmt.Sprintf("/actor-runs/%s", url.PathEscape(runID))

	var result apifyRunEnvelope
	status, err := p.rest().doGET(ctx, endpoint, p.url(endpoint, nil), &result)
	if err != nil {
		return nil, status, err
	}

	return &result.Data, status, nil
}

// GetDatasetItems reads every item of a dataset as records, keeping each item's key order
func (p *ApifyProvider) GetDatasetItems(ctx context.Context, datasetID string) ([]normalize.Record, int, error) {
	if err := p.checkConfig(); err != nil {
		return nil, 0, err
	}

	endpoint := fmt.Sprintf("/datasets/%s/items", url.PathEscape(datasetID))
	query := url.Values{}
	query.Set("clean", "true")
	query.Set("format", "json")

	var items []normalize.Record
	status, err := p.rest().doGET(ctx, endpoint, p.url(endpoint, query), &items)
	if err != nil {
		return nil, status, err
	}

	return items, status, nil
}
