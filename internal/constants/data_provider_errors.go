package constants

// Upstream error codes carried by providers.ProviderError.
const (
	ErrCodeInvalidAPIKey     = "INVALID_API_KEY"
	ErrCodeNotConfigured     = "NOT_CONFIGURED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodePermissionDenied  = "PERMISSION_DENIED"
	ErrCodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
	ErrCodeUpstreamFailure   = "UPSTREAM_FAILURE"
)

// DataProviderErrorMessages holds human-readable messages for the codes above.
var DataProviderErrorMessages = map[string]string{
	ErrCodeInvalidAPIKey:     "The upstream API key is invalid or has been revoked",
	ErrCodeNotConfigured:     "The upstream service is not configured",
	ErrCodeRateLimited:       "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:      "Unable to reach the upstream service",
	ErrCodePermissionDenied:  "Permission denied by the upstream service",
	ErrCodeResourceNotFound:  "The requested upstream resource was not found",
	ErrCodeInvalidDataFormat: "The upstream service returned data in an unexpected format",
	ErrCodeUpstreamFailure:   "The upstream service failed to process the request",
}

// GetErrorMessage returns the message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
