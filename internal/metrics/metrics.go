package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for leadboard
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Import Metrics
	RowsImportedTotal    prometheus.Counter
	BatchFailuresTotal   prometheus.Counter
	ImportDuration       prometheus.Histogram
	RecordsRejectedTotal *prometheus.CounterVec

	// Credit Metrics
	CreditsBalance         prometheus.Gauge
	CreditsDeductedTotal   *prometheus.CounterVec
	CreditsToppedUpTotal   prometheus.Counter
	InsufficientFundsTotal *prometheus.CounterVec

	// Upstream Metrics
	WebhookCallsTotal *prometheus.CounterVec
	ScraperPollsTotal *prometheus.CounterVec
	UpstreamDuration  *prometheus.HistogramVec
}

// NewMetricsRegistry registers every metric with reg. Passing prometheus.DefaultRegisterer
// exposes them on the default /metrics handler; tests pass a fresh prometheus.NewRegistry().
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadboard_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leadboard_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Import Metrics
		RowsImportedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadboard_rows_imported_total",
				Help: "Total lead rows persisted by the batch importer",
			},
		),
		BatchFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadboard_import_batch_failures_total",
				Help: "Total import batches that failed to persist",
			},
		),
		ImportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "leadboard_import_duration_seconds",
				Help:    "Batch import execution time in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		RecordsRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_import_requests_rejected_total",
				Help: "Import requests rejected before anything was written, by reason",
			},
			[]string{"reason"},
		),

		// Credit Metrics
		CreditsBalance: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "leadboard_credits_balance",
				Help: "Last observed credit balance",
			},
		),
		CreditsDeductedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_credits_deducted_total",
				Help: "Credits deducted by reason",
			},
			[]string{"reason"},
		),
		CreditsToppedUpTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadboard_credits_topped_up_total",
				Help: "Credits added through top-ups",
			},
		),
		InsufficientFundsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_credits_insufficient_total",
				Help: "Deductions refused for lack of credits, by reason",
			},
			[]string{"reason"},
		),

		// Upstream Metrics
		WebhookCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_webhook_calls_total",
				Help: "Outbound webhook calls by hook and outcome",
			},
			[]string{"hook", "outcome"},
		),
		ScraperPollsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadboard_scraper_polls_total",
				Help: "Scraper run status polls by observed status",
			},
			[]string{"status"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadboard_upstream_duration_seconds",
				Help:    "Latency of calls to external services in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"service"},
		),
	}
}
