package routes

import (
	"net/http"
	"time"

	"clientflow/leadboard/internal/api"
	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes builds the HTTP handler. gatherer backs /metrics and should be the
// registry deps.Metrics was registered with.
func RegisterRoutes(deps *api.Dependencies, cfg config.Config, gatherer prometheus.Gatherer, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Logging)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(deps, upSince))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	RegisterAPIRoutes(r, deps, cfg)

	logging.Info("Router initialized with metrics and logging middleware")
	return r
}
