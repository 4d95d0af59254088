package routes

import (
	"clientflow/leadboard/internal/api"
	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers every /api route. Endpoints that spend credits or call
// paid upstreams share one per-IP rate limiter.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, cfg config.Config) {
	limited := middleware.RateLimitMiddleware(cfg.RateLimit)

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(middleware.InFlightMiddleware(deps.Metrics, "api"))

		apiRouter.Get("/credits", api.GetCreditsHandler(deps))
		apiRouter.Post("/credits", api.UpdateCreditsHandler(deps))

		apiRouter.Route("/tables", func(tables chi.Router) {
			tables.Get("/", api.ListTablesHandler(deps))
			tables.Delete("/", api.DeleteTableHandler(deps))
			tables.Post("/import", api.ImportTableHandler(deps))

			tables.Route("/{id}", func(table chi.Router) {
				table.Get("/", api.GetTableHandler(deps))
				table.Put("/", api.UpdateTableHandler(deps))
				table.Delete("/", api.DeleteRowsHandler(deps))
				table.Post("/update-email", api.UpdateEmailHandler(deps))
				table.Post("/update-ai-email", api.UpdateAIEmailHandler(deps))
				table.With(limited).Post("/extract-emails", api.ExtractEmailsHandler(deps))
				table.With(limited).Post("/generate-ai-emails", api.GenerateAIEmailsHandler(deps))
			})
		})

		// Callbacks come from the automation platform and are authorized by their token.
		apiRouter.Post("/webhook/callback/{kind}", api.WebhookCallbackHandler(deps))

		apiRouter.With(limited).Post("/webhook/sales-navigator", api.SalesNavigatorHandler(deps))
		apiRouter.With(limited).Post("/run-scraper", api.RunScraperHandler(deps))
		apiRouter.With(limited).Post("/import-spreadsheet", api.ImportSpreadsheetHandler(deps))
	})
}
