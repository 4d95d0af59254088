package services

import (
	"context"
	"encoding/json"
	"strings"

	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/metrics"
	"clientflow/leadboard/internal/normalize"
	"clientflow/leadboard/internal/providers"
)

// SalesNavigatorService hands Sales Navigator searches to the automation webhook
type SalesNavigatorService struct {
	webhooks *providers.WebhookClient
	hookURL  string
	metrics  *metrics.MetricsRegistry
}

// PassthroughResult is the webhook's answer as it should be returned to the caller
type PassthroughResult struct {
	StatusCode int
	Body       normalize.Value
}

// NewSalesNavigatorService creates a new Sales Navigator service
func NewSalesNavigatorService(webhooks *providers.WebhookClient, hooks config.WebhookConfig, metricsReg *metrics.MetricsRegistry) *SalesNavigatorService {
	return &SalesNavigatorService{
		webhooks: webhooks,
		hookURL:  hooks.SalesNavigatorURL,
		metrics:  metricsReg,
	}
}

// Submit forwards the search. The result is 200 when the webhook reports success in
// its body, whatever its status; otherwise the webhook's own status is kept. A body
// that is not JSON comes back as {"message": <text>}.
func (svc *SalesNavigatorService) Submit(ctx context.Context, searchName, salesNavURL string) (*PassthroughResult, error) {
	if strings.TrimSpace(searchName) == "" || strings.TrimSpace(salesNavURL) == "" {
		return nil, invalid(constants.MsgSalesNavRequired)
	}
	if svc.hookURL == "" {
		return nil, ErrWebhookNotConfigured
	}

	resp, err := svc.webhooks.Forward(ctx, svc.hookURL, map[string]string{
		"searchName":  searchName,
		"salesNavUrl": salesNavURL,
	})
	if err != nil {
		svc.count("error")
		return nil, err
	}

	body := passthroughBody(resp.Body)
	status := resp.StatusCode
	if reportsSuccess(body) {
		status = 200
	}

	outcome := "ok"
	if status >= 300 {
		outcome = "error"
	}
	svc.count(outcome)
	logging.Info("Sales Navigator search submitted", "search", searchName, "upstream_status", resp.StatusCode, "status", status)

	return &PassthroughResult{StatusCode: status, Body: body}, nil
}

func (svc *SalesNavigatorService) count(outcome string) {
	if svc.metrics != nil {
		svc.metrics.WebhookCallsTotal.WithLabelValues("sales_navigator", outcome).Inc()
	}
}

func passthroughBody(raw []byte) normalize.Value {
	var v normalize.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return normalize.Object(normalize.NewRecord("message", string(raw)))
	}
	return v
}

// reportsSuccess is true for {"data":"success"} or a truthy "success" field
func reportsSuccess(body normalize.Value) bool {
	obj, ok := body.Object()
	if !ok {
		return false
	}
	if data, ok := obj.Lookup("data"); ok && data.Kind() == normalize.KindString && normalize.Coerce(data) == "success" {
		return true
	}
	if success, ok := obj.Lookup("success"); ok && success.Truthy() {
		return true
	}
	return false
}
