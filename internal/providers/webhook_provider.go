package providers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"clientflow/leadboard/internal/constants"
)

// WebhookClient posts JSON payloads to automation webhooks
type WebhookClient struct {
	Client *http.Client
}

// WebhookResponse is the upstream answer as received
type WebhookResponse struct {
	StatusCode int
	Body       []byte
}

// NewWebhookClient creates a new webhook client
func NewWebhookClient() *WebhookClient {
	return &WebhookClient{
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *WebhookClient) rest() *restClient {
	return &restClient{service: "webhook", client: c.Client}
}

// Forward posts payload and returns the upstream response whatever its status. Only
// transport failures are errors.
func (c *WebhookClient) Forward(ctx context.Context, hookURL string, payload interface{}) (*WebhookResponse, error) {
	if hookURL == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "webhook URL is not configured",
		}
	}

	status, body, err := c.rest().do(ctx, http.MethodPost, endpointOf(hookURL), hookURL, payload)
	if err != nil && status == 0 {
		return nil, err
	}

	return &WebhookResponse{StatusCode: status, Body: body}, nil
}

// Trigger posts payload and fails unless the webhook answers 2xx
func (c *WebhookClient) Trigger(ctx context.Context, hookURL string, payload interface{}) error {
	if hookURL == "" {
		return &ProviderError{
			Code:    constants.ErrCodeNotConfigured,
			Message: "webhook URL is not configured",
		}
	}

	_, _, err := c.rest().do(ctx, http.MethodPost, endpointOf(hookURL), hookURL, payload)
	return err
}

// endpointOf keeps host and path for error messages
func endpointOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "webhook"
	}
	return u.Host + u.Path
}
