package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/config"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/db/repositories"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/metrics"
	"clientflow/leadboard/internal/models/dtos"
	gormModels "clientflow/leadboard/internal/models/gorm"
	"clientflow/leadboard/internal/providers"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrWebhookNotConfigured is returned when the enrichment webhook URL is empty
	ErrWebhookNotConfigured = errors.New("enrichment webhook not configured")
	// ErrCallbackRejected covers bad, expired, reused and mismatched callback tokens
	ErrCallbackRejected = errors.New("callback token rejected")
)

const (
	ModeWebhook = "webhook"
	ModeGemini  = "gemini"
)

type emailGenerator interface {
	GenerateEmail(ctx context.Context, instructions string, lead providers.LeadProfile) (string, error)
}

// EnrichmentService fills in emails and AI emails for selected rows, either through the
// automation webhooks (results arrive later on the callback endpoint) or directly with
// Gemini when an API key is configured.
type EnrichmentService struct {
	tables    *repositories.TableConfigRepo
	rows      *repositories.TableRowRepo
	tableSvc  *TableService
	credits   *CreditService
	webhooks  *providers.WebhookClient
	generator emailGenerator
	signer    *common.CallbackSigner
	hooks     config.WebhookConfig
	callback  config.CallbackConfig
	metrics   *metrics.MetricsRegistry
}

// NewEnrichmentService creates a new enrichment service. generator may be nil.
func NewEnrichmentService(
	tables *repositories.TableConfigRepo,
	rows *repositories.TableRowRepo,
	tableSvc *TableService,
	credits *CreditService,
	webhooks *providers.WebhookClient,
	generator *providers.GeminiEmailGenerator,
	signer *common.CallbackSigner,
	hooks config.WebhookConfig,
	callback config.CallbackConfig,
	metricsReg *metrics.MetricsRegistry,
) *EnrichmentService {
	svc := &EnrichmentService{
		tables:   tables,
		rows:     rows,
		tableSvc: tableSvc,
		credits:  credits,
		webhooks: webhooks,
		signer:   signer,
		hooks:    hooks,
		callback: callback,
		metrics:  metricsReg,
	}
	if generator != nil {
		svc.generator = generator
	}
	return svc
}

// ExtractEmails asks the email extraction webhook to find an email for each row.
// The balance must cover every row up front; credits are only charged when a result
// is written.
func (svc *EnrichmentService) ExtractEmails(ctx context.Context, tableID string, rowIDs []string) (*dtos.EnrichmentResponse, error) {
	_, rows, err := svc.loadRows(ctx, tableID, rowIDs)
	if err != nil {
		return nil, err
	}
	if svc.hooks.EmailExtractionURL == "" {
		return nil, ErrWebhookNotConfigured
	}
	if err := svc.credits.EnsureAvailable(ctx, constants.CostEmailExtraction*int64(len(rows))); err != nil {
		return nil, err
	}

	failed := svc.fanOut(ctx, rows, func(ctx context.Context, row gormModels.TableRow) error {
		callbackURL, err := svc.callbackURL(constants.CallbackKindEmail, tableID, row.ID)
		if err != nil {
			return err
		}
		return svc.trigger(ctx, "email_extraction", svc.hooks.EmailExtractionURL, map[string]string{
			"rowId":       row.ID,
			"tableId":     tableID,
			"firstName":   row.FirstName,
			"lastName":    row.LastName,
			"companyName": row.CompanyName,
			"linkedinUrl": row.LinkedinURL,
			"callbackUrl": callbackURL,
		})
	})

	return &dtos.EnrichmentResponse{
		Requested: len(rowIDs),
		Triggered: len(rows) - len(failed),
		Failed:    failed,
		Mode:      ModeWebhook,
	}, nil
}

// GenerateAIEmails writes a personalized email for each row using the table's prompt
func (svc *EnrichmentService) GenerateAIEmails(ctx context.Context, tableID string, rowIDs []string) (*dtos.EnrichmentResponse, error) {
	table, rows, err := svc.loadRows(ctx, tableID, rowIDs)
	if err != nil {
		return nil, err
	}

	var prompt string
	if table.AIPrompt != nil {
		prompt = *table.AIPrompt
	}

	if svc.generator != nil {
		if err := svc.credits.EnsureAvailable(ctx, constants.CostAIEmail*int64(len(rows))); err != nil {
			return nil, err
		}

		failed := svc.fanOut(ctx, rows, func(ctx context.Context, row gormModels.TableRow) error {
			text, err := svc.generator.GenerateEmail(ctx, prompt, leadProfile(row))
			if err != nil {
				return err
			}
			_, err = svc.tableSvc.UpdateAIEmail(ctx, tableID, row.ID, text)
			return err
		})

		return &dtos.EnrichmentResponse{
			Requested: len(rowIDs),
			Completed: len(rows) - len(failed),
			Failed:    failed,
			Mode:      ModeGemini,
		}, nil
	}

	if svc.hooks.AIEmailURL == "" {
		return nil, ErrWebhookNotConfigured
	}
	if err := svc.credits.EnsureAvailable(ctx, constants.CostAIEmail*int64(len(rows))); err != nil {
		return nil, err
	}

	failed := svc.fanOut(ctx, rows, func(ctx context.Context, row gormModels.TableRow) error {
		callbackURL, err := svc.callbackURL(constants.CallbackKindAIEmail, tableID, row.ID)
		if err != nil {
			return err
		}
		return svc.trigger(ctx, "ai_email", svc.hooks.AIEmailURL, map[string]string{
			"rowId":       row.ID,
			"tableId":     tableID,
			"prompt":      prompt,
			"firstName":   row.FirstName,
			"lastName":    row.LastName,
			"position":    row.CurrentPosition,
			"companyName": row.CompanyName,
			"linkedinUrl": row.LinkedinURL,
			"callbackUrl": callbackURL,
		})
	})

	return &dtos.EnrichmentResponse{
		Requested: len(rowIDs),
		Triggered: len(rows) - len(failed),
		Failed:    failed,
		Mode:      ModeWebhook,
	}, nil
}

// HandleCallback applies a result posted back by a webhook. The token is checked
// against kind and can be used once.
func (svc *EnrichmentService) HandleCallback(ctx context.Context, kind constants.CallbackKind, tokenString, value string) (any, error) {
	if kind != constants.CallbackKindEmail && kind != constants.CallbackKindAIEmail {
		return nil, invalid(constants.MsgUnknownCallback)
	}
	if strings.TrimSpace(value) == "" {
		return nil, invalid(constants.MsgCallbackValue)
	}

	token, err := svc.signer.Validate(tokenString)
	if err != nil {
		logging.Warn("Callback token rejected", "kind", kind, "error", err)
		return nil, ErrCallbackRejected
	}
	if token.Kind != kind {
		logging.Warn("Callback kind mismatch", "kind", kind, "token_kind", token.Kind)
		return nil, ErrCallbackRejected
	}
	if err := svc.signer.Consume(token); err != nil {
		logging.Warn("Callback token reused", "kind", kind, "error", err)
		return nil, ErrCallbackRejected
	}

	if kind == constants.CallbackKindEmail {
		return svc.tableSvc.UpdateEmail(ctx, token.TableID, token.RowID, strings.TrimSpace(value))
	}
	return svc.tableSvc.UpdateAIEmail(ctx, token.TableID, token.RowID, strings.TrimSpace(value))
}

func (svc *EnrichmentService) loadRows(ctx context.Context, tableID string, rowIDs []string) (*gormModels.TableConfig, []gormModels.TableRow, error) {
	if len(rowIDs) == 0 {
		return nil, nil, invalid(constants.MsgRowIDsRequired)
	}

	table, err := svc.tables.FindByID(ctx, tableID)
	if err != nil {
		return nil, nil, fmt.Errorf("find table: %w", err)
	}
	if table == nil {
		return nil, nil, notFound(constants.MsgTableNotFound)
	}

	rows, err := svc.rows.FindManyInTable(ctx, tableID, rowIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("find rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, notFound(constants.MsgRowNotFound)
	}

	return table, rows, nil
}

// fanOut runs fn for every row with bounded concurrency and returns the ids that failed.
// A failing row never stops the others.
func (svc *EnrichmentService) fanOut(ctx context.Context, rows []gormModels.TableRow, fn func(context.Context, gormModels.TableRow) error) []string {
	var (
		mu     sync.Mutex
		failed []string
	)

	g := new(errgroup.Group)
	g.SetLimit(max(svc.hooks.Concurrency, 1))

	for _, row := range rows {
		g.Go(func() error {
			if err := fn(ctx, row); err != nil {
				logging.Warn("Row enrichment failed", "table_id", row.TableConfigID, "row_id", row.ID, "error", err)
				mu.Lock()
				failed = append(failed, row.ID)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return failed
}

func (svc *EnrichmentService) trigger(ctx context.Context, hook, hookURL string, payload any) error {
	err := svc.webhooks.Trigger(ctx, hookURL, payload)
	if svc.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		svc.metrics.WebhookCallsTotal.WithLabelValues(hook, outcome).Inc()
	}
	return err
}

func (svc *EnrichmentService) callbackURL(kind constants.CallbackKind, tableID, rowID string) (string, error) {
	token, err := svc.signer.Sign(kind, tableID, rowID, svc.callback.TokenTTL)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(svc.callback.PublicBaseURL, "/")
	return fmt.Sprintf("%s/api/webhook/callback/%s?token=%s", base, kind, url.QueryEscape(token)), nil
}

func leadProfile(row gormModels.TableRow) providers.LeadProfile {
	return providers.LeadProfile{
		FirstName:          row.FirstName,
		LastName:           row.LastName,
		CurrentPosition:    row.CurrentPosition,
		CompanyName:        row.CompanyName,
		Industry:           row.Industry,
		Location:           row.Location,
		ProfileSummary:     row.ProfileSummary,
		CompanyDescription: row.CompanyDescription,
	}
}
