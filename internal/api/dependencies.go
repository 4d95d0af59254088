package api

import (
	"context"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/db/repositories"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/metrics"
	"clientflow/leadboard/internal/providers"
	"clientflow/leadboard/internal/services"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Repositories struct {
	Credits *repositories.CreditsRepo
	Tables  *repositories.TableConfigRepo
	Rows    *repositories.TableRowRepo
}

type Services struct {
	Cache        common.CacheInterface
	Credits      *services.CreditService
	Importer     *services.ImportService
	Tables       *services.TableService
	Enrichment   *services.EnrichmentService
	SalesNav     *services.SalesNavigatorService
	Scraper      *services.ScraperService
	Spreadsheets *services.SpreadsheetService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
	SQL      *sqlx.DB
}

// InitDependencies wires repositories, providers and services. The Gemini generator is
// only built when an API key is configured; without it AI emails go through the webhook.
func InitDependencies(
	ctx context.Context,
	cfg config.Config,
	orm *gorm.DB,
	sqlDB *sqlx.DB,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) (*Dependencies, error) {
	repos := &Repositories{
		Credits: repositories.NewCreditsRepo(sqlDB),
		Tables:  repositories.NewTableConfigRepo(orm),
		Rows:    repositories.NewTableRowRepo(orm),
	}

	var generator *providers.GeminiEmailGenerator
	if cfg.Gemini.APIKey != "" {
		g, err := providers.NewGeminiEmailGenerator(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		generator = g
		logging.Info("AI emails will be generated with Gemini", "model", cfg.Gemini.Model)
	}

	secret := cfg.Callback.Secret
	if secret == "" {
		// Tokens signed with a per-process key stop validating after a restart.
		secret = uuid.NewString()
		logging.Warn("CALLBACK_SECRET not set, using a random key for this process")
	}
	signer := common.NewCallbackSigner([]byte(secret), cache)
	webhooks := providers.NewWebhookClient()

	creditSvc := services.NewCreditService(repos.Credits, metricsReg)
	importSvc := services.NewImportService(repos.Tables, repos.Rows, creditSvc, cache, metricsReg)
	tableSvc := services.NewTableService(repos.Tables, repos.Rows, creditSvc, cache, cfg.Cache.TableListTTL, metricsReg)

	svcs := &Services{
		Cache:    cache,
		Credits:  creditSvc,
		Importer: importSvc,
		Tables:   tableSvc,
		Enrichment: services.NewEnrichmentService(
			repos.Tables, repos.Rows, tableSvc, creditSvc,
			webhooks, generator, signer,
			cfg.Webhooks, cfg.Callback, metricsReg,
		),
		SalesNav:     services.NewSalesNavigatorService(webhooks, cfg.Webhooks, metricsReg),
		Scraper:      services.NewScraperService(providers.NewApifyProvider(cfg.Apify), importSvc, cfg.Apify, metricsReg),
		Spreadsheets: services.NewSpreadsheetService(providers.NewSheetsProvider(cfg.Sheets), importSvc),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
		SQL:      sqlDB,
	}, nil
}
