package middleware

import (
	"net/http"
	"time"

	"clientflow/leadboard/internal/logging"
)

// Logging writes a debug line when a request arrives and another when it completes.
// Bodies and headers are not logged.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logging.WithRequest(RequestID(r.Context()), r.URL.Path)
		log.Debugw("→ request", "method", r.Method)

		lw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(lw, r)

		log.Debugw("← response",
			"method", r.Method,
			"status", lw.statusCode,
			"duration", time.Since(start).String(),
		)
	})
}
