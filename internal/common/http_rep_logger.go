package common

import (
	"net/http"

	"clientflow/leadboard/internal/logging"
)

// LogHTTPRequest logs an outbound request at debug level. Query and body are left out
// because upstream keys and session cookies travel there.
func LogHTTPRequest(req *http.Request) {
	logging.Debug("Outbound HTTP request",
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
	)
}
