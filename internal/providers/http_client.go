package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/constants"
)

// restClient holds the JSON-over-HTTP plumbing shared by the upstream providers.
type restClient struct {
	service string
	client  *http.Client
}

// doGET performs a GET request and decodes the JSON response into result
func (c *restClient) doGET(ctx context.Context, endpoint, rawURL string, result interface{}) (int, error) {
	status, body, err := c.do(ctx, http.MethodGet, endpoint, rawURL, nil)
	if err != nil {
		return status, err
	}
	return status, c.decode(endpoint, body, result)
}

// doPost performs a POST request with a JSON body and decodes the JSON response into result
func (c *restClient) doPost(ctx context.Context, endpoint, rawURL string, payload interface{}, result interface{}) (int, error) {
	status, body, err := c.do(ctx, http.MethodPost, endpoint, rawURL, payload)
	if err != nil {
		return status, err
	}
	return status, c.decode(endpoint, body, result)
}

// do sends the request and returns the raw body. Non-2xx responses become a
// ProviderError that still carries the status code.
func (c *restClient) do(ctx context.Context, method, endpoint, rawURL string, payload interface{}) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, &ProviderError{
				Code:    constants.ErrCodeInvalidDataFormat,
				Message: "Failed to marshal request body",
				Err:     err,
			}
		}
		reader = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return 0, nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	common.LogHTTPRequest(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: fmt.Sprintf("%s: %s", c.service, constants.GetErrorMessage(constants.ErrCodeNetworkError)),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, nil, &ProviderError{
			Code:       constants.ErrCodeNetworkError,
			Message:    "Failed to read response body",
			StatusCode: resp.StatusCode,
			Err:        readErr,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, bodyBytes, c.buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
	}

	return resp.StatusCode, bodyBytes, nil
}

func (c *restClient) decode(endpoint string, body []byte, result interface{}) error {
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: fmt.Sprintf("Failed to decode response from %s", endpoint),
			Details: string(body),
			Err:     err,
		}
	}
	return nil
}

// buildHTTPError creates appropriate error based on status code
func (c *restClient) buildHTTPError(statusCode int, endpoint string, body string) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return &ProviderError{
			Code:       constants.ErrCodeInvalidAPIKey,
			Message:    fmt.Sprintf("%s: authentication failed for %s", c.service, endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	case http.StatusForbidden:
		return &ProviderError{
			Code:       constants.ErrCodePermissionDenied,
			Message:    fmt.Sprintf("%s: permission denied for %s", c.service, endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	case http.StatusNotFound:
		return &ProviderError{
			Code:       constants.ErrCodeResourceNotFound,
			Message:    fmt.Sprintf("%s: resource not found: %s", c.service, endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:       constants.ErrCodeRateLimited,
			Message:    fmt.Sprintf("%s: %s", c.service, constants.GetErrorMessage(constants.ErrCodeRateLimited)),
			Details:    body,
			StatusCode: statusCode,
		}
	case http.StatusBadRequest:
		return &ProviderError{
			Code:       constants.ErrCodeInvalidDataFormat,
			Message:    fmt.Sprintf("%s: bad request to %s", c.service, endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	default:
		return &ProviderError{
			Code:       constants.ErrCodeUpstreamFailure,
			Message:    fmt.Sprintf("%s: HTTP %d from %s", c.service, statusCode, endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	}
}
