package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/metrics"
	"clientflow/leadboard/internal/models/dtos"
	"clientflow/leadboard/internal/normalize"
	"clientflow/leadboard/internal/providers"

	"golang.org/x/time/rate"
)

// ErrScrapingFailed is returned when the actor run ends in any state but SUCCEEDED
var ErrScrapingFailed = errors.New("scraping failed")

// ScraperService runs the LinkedIn scraper actor and optionally imports what it found
type ScraperService struct {
	apify        *providers.ApifyProvider
	importer     *ImportService
	pollInterval time.Duration
	pollTimeout  time.Duration
	metrics      *metrics.MetricsRegistry
}

// ScrapeRequest is the input of one scraper run
type ScrapeRequest struct {
	SearchName string
	SearchURL  string
	LiAt       string
	TableName  string
}

// NewScraperService creates a new scraper service
func NewScraperService(apify *providers.ApifyProvider, importer *ImportService, cfg config.ApifyConfig, metricsReg *metrics.MetricsRegistry) *ScraperService {
	return &ScraperService{
		apify:        apify,
		importer:     importer,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		metrics:      metricsReg,
	}
}

// Run starts the actor, waits for it to stop and returns the dataset. With a table
// name the items are also imported as a new table.
func (svc *ScraperService) Run(ctx context.Context, req ScrapeRequest) (*dtos.ScraperResponse, error) {
	if strings.TrimSpace(req.SearchName) == "" || strings.TrimSpace(req.SearchURL) == "" || strings.TrimSpace(req.LiAt) == "" {
		return nil, invalid(constants.MsgScraperRequired)
	}

	run, _, err := svc.timed(func() (*providers.ApifyRun, int, error) {
		return svc.apify.StartRun(ctx, map[string]string{
			"searchName": req.SearchName,
			"searchUrl":  req.SearchURL,
			"liAt":       req.LiAt,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("start scraper run: %w", err)
	}
	logging.Info("Scraper run started", "run_id", run.ID, "search", req.SearchName)

	run, err = svc.waitForRun(ctx, run)
	if err != nil {
		return nil, err
	}
	if run.Status != constants.RunStatusSucceeded {
		logging.Warn("Scraper run did not succeed", "run_id", run.ID, "status", run.Status)
		return &dtos.ScraperResponse{RunID: run.ID, Status: run.Status}, ErrScrapingFailed
	}

	items, _, err := svc.apify.GetDatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, fmt.Errorf("fetch scraper results: %w", err)
	}
	if items == nil {
		items = []normalize.Record{}
	}

	resp := &dtos.ScraperResponse{
		RunID:  run.ID,
		Status: run.Status,
		Items:  items,
	}

	if strings.TrimSpace(req.TableName) != "" && len(items) > 0 {
		toImport := items
		if len(toImport) > constants.MaxImportRecords {
			logging.Warn("Scraper returned more items than one import allows",
				"run_id", run.ID,
				"items", len(items),
				"imported", constants.MaxImportRecords,
			)
			toImport = toImport[:constants.MaxImportRecords]
		}

		imported, err := svc.importer.ImportRecords(ctx, req.TableName, toImport)
		if err != nil {
			return nil, fmt.Errorf("import scraper results: %w", err)
		}
		resp.Import = imported
	}

	return resp, nil
}

// waitForRun polls the run at the configured interval until it reaches a terminal
// state, the poll timeout elapses or ctx is cancelled.
func (svc *ScraperService) waitForRun(ctx context.Context, run *providers.ApifyRun) (*providers.ApifyRun, error) {
	if run.Terminal() {
		return run, nil
	}

	if svc.pollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, svc.pollTimeout)
		defer cancel()
	}

	limiter := rate.NewLimiter(rate.Every(svc.pollInterval), 1)
	runID := run.ID

	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("scraper run %s did not finish in time: %w", runID, err)
		}

		current, _, err := svc.timed(func() (*providers.ApifyRun, int, error) {
			return svc.apify.GetRun(ctx, runID)
		})
		if err != nil {
			return nil, fmt.Errorf("poll scraper run %s: %w", runID, err)
		}
		if svc.metrics != nil {
			svc.metrics.ScraperPollsTotal.WithLabelValues(current.Status).Inc()
		}
		if current.Terminal() {
			return current, nil
		}
	}
}

func (svc *ScraperService) timed(call func() (*providers.ApifyRun, int, error)) (*providers.ApifyRun, int, error) {
	start := time.Now()
	run, status, err := call()
	if svc.metrics != nil {
		svc.metrics.UpstreamDuration.WithLabelValues("apify").Observe(time.Since(start).Seconds())
	}
	return run, status, err
}
