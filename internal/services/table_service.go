package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/db/repositories"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/metrics"
	"clientflow/leadboard/internal/models/dtos"
	gormModels "clientflow/leadboard/internal/models/gorm"
	"clientflow/leadboard/internal/normalize"
)

// TableService serves the lead tables shown on the dashboard
type TableService struct {
	tables  *repositories.TableConfigRepo
	rows    *repositories.TableRowRepo
	credits *CreditService
	cache   common.CacheInterface
	listTTL time.Duration
	metrics *metrics.MetricsRegistry
}

// NewTableService creates a new table service
func NewTableService(
	tables *repositories.TableConfigRepo,
	rows *repositories.TableRowRepo,
	credits *CreditService,
	cache common.CacheInterface,
	listTTL time.Duration,
	metricsReg *metrics.MetricsRegistry,
) *TableService {
	return &TableService{
		tables:  tables,
		rows:    rows,
		credits: credits,
		cache:   cache,
		listTTL: listTTL,
		metrics: metricsReg,
	}
}

// List returns every table with its row count, newest first
func (svc *TableService) List(ctx context.Context) ([]dtos.TableSummary, error) {
	key := string(constants.CachePrefixTableList)
	loaded := false

	val, err := svc.cache.GetOrSet(key, svc.listTTL, func() (any, error) {
		loaded = true
		return svc.loadSummaries(ctx)
	})
	if err != nil {
		return nil, err
	}
	svc.countCache(key, loaded)

	var summaries []dtos.TableSummary
	if err := common.DecodeCached(val, &summaries); err != nil {
		logging.Warn("Discarding unreadable table list cache entry", "error", err)
		svc.cache.Delete(key)
		return svc.loadSummaries(ctx)
	}
	if summaries == nil {
		summaries = []dtos.TableSummary{}
	}
	return summaries, nil
}

func (svc *TableService) loadSummaries(ctx context.Context) ([]dtos.TableSummary, error) {
	tables, err := svc.tables.ListWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	summaries := make([]dtos.TableSummary, 0, len(tables))
	for _, t := range tables {
		summaries = append(summaries, dtos.TableSummary{
			ID:        t.ID,
			Name:      t.Name,
			CreatedAt: t.CreatedAt,
			Count:     dtos.RowCount{Rows: t.RowCount},
		})
	}
	return summaries, nil
}

// Get returns a table with its rows laid out for the grid
func (svc *TableService) Get(ctx context.Context, tableID string) (*dtos.TableDetailResponse, error) {
	table, err := svc.tables.FindByID(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("find table: %w", err)
	}
	if table == nil {
		return nil, notFound(constants.MsgTableNotFound)
	}

	rows, err := svc.rows.ListByTable(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}

	grid := make([]dtos.GridRow, 0, len(rows))
	for _, row := range rows {
		grid = append(grid, toGridRow(row))
	}

	return &dtos.TableDetailResponse{
		Table: dtos.TableInfo{
			ID:       table.ID,
			Name:     table.Name,
			AIPrompt: table.AIPrompt,
		},
		Headers:      normalize.Headers(),
		Rows:         grid,
		TotalRecords: len(grid),
	}, nil
}

// UpdateCell sets one grid cell. field is a grid header such as "Company Name".
func (svc *TableService) UpdateCell(ctx context.Context, tableID, recordID, field string, value normalize.Value) (dtos.GridRow, error) {
	if recordID == "" || field == "" {
		return nil, invalid(constants.MsgMissingRecordField)
	}
	dest, ok := normalize.FieldByHeader(field)
	if !ok {
		return nil, invalid(constants.MsgUnsupportedField)
	}

	_, after, err := svc.rows.UpdateColumn(ctx, tableID, recordID, dest.Column, normalize.Coerce(value))
	if err != nil {
		return nil, fmt.Errorf("update cell: %w", err)
	}
	if after == nil {
		return nil, notFound(constants.MsgRowNotFound)
	}

	return toGridRow(*after), nil
}

// UpdateAIPrompt stores the prompt used to generate AI emails for the table
func (svc *TableService) UpdateAIPrompt(ctx context.Context, tableID, prompt string) (*dtos.TableInfo, error) {
	table, err := svc.tables.UpdateAIPrompt(ctx, tableID, prompt)
	if err != nil {
		return nil, fmt.Errorf("update ai prompt: %w", err)
	}
	if table == nil {
		return nil, notFound(constants.MsgTableNotFound)
	}

	return &dtos.TableInfo{ID: table.ID, AIPrompt: table.AIPrompt}, nil
}

// DeleteRows removes rows of the table and returns how many were deleted
func (svc *TableService) DeleteRows(ctx context.Context, tableID string, recordIDs []string) (int64, error) {
	if len(recordIDs) == 0 {
		return 0, invalid(constants.MsgRecordIDsRequired)
	}

	deleted, err := svc.rows.DeleteInTable(ctx, tableID, recordIDs)
	if err != nil {
		return 0, fmt.Errorf("delete rows: %w", err)
	}

	svc.cache.Delete(string(constants.CachePrefixTableList))
	return deleted, nil
}

// DeleteTable removes a table and every row in it
func (svc *TableService) DeleteTable(ctx context.Context, tableID string) error {
	if strings.TrimSpace(tableID) == "" {
		return invalid(constants.MsgTableIDRequired)
	}

	deleted, err := svc.tables.Delete(ctx, tableID)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	if !deleted {
		return notFound(constants.MsgTableNotFound)
	}

	svc.cache.Delete(string(constants.CachePrefixTableList))
	logging.Info("Table deleted", "table_id", tableID)
	return nil
}

// UpdateEmail stores an email for a row. Populating an empty email costs
// CostEmailExtraction credits; overwriting one is free.
func (svc *TableService) UpdateEmail(ctx context.Context, tableID, rowID, email string) (*dtos.EmailUpdateResponse, error) {
	if rowID == "" || tableID == "" || email == "" {
		return nil, invalid(constants.MsgEmailFieldsRequired)
	}

	before, after, err := svc.rows.UpdateColumn(ctx, tableID, rowID, normalize.Email.Column, email)
	if err != nil {
		return nil, fmt.Errorf("update email: %w", err)
	}
	if after == nil {
		return nil, notFound(constants.MsgRowNotFound)
	}

	if isBlank(before.Email) {
		_ = svc.credits.ChargeBestEffort(ctx, constants.CostEmailExtraction, constants.CreditReasonEmailExtraction)
	}

	return &dtos.EmailUpdateResponse{ID: after.ID, Email: after.Email}, nil
}

// UpdateAIEmail stores a personalized email for a row. Populating an empty one costs
// CostAIEmail credits; overwriting one is free.
func (svc *TableService) UpdateAIEmail(ctx context.Context, tableID, rowID, aiEmail string) (*dtos.AIEmailUpdateResponse, error) {
	if rowID == "" || tableID == "" || aiEmail == "" {
		return nil, invalid(constants.MsgAIEmailRequired)
	}

	before, after, err := svc.rows.UpdateColumn(ctx, tableID, rowID, normalize.AIPersonalizedEmail.Column, aiEmail)
	if err != nil {
		return nil, fmt.Errorf("update ai email: %w", err)
	}
	if after == nil {
		return nil, notFound(constants.MsgRowNotFound)
	}

	if isBlank(before.AIPersonalizedEmail) {
		_ = svc.credits.ChargeBestEffort(ctx, constants.CostAIEmail, constants.CreditReasonAIEmail)
	}

	return &dtos.AIEmailUpdateResponse{ID: after.ID, AIPersonalizedEmail: after.AIPersonalizedEmail}, nil
}

func (svc *TableService) countCache(key string, loaded bool) {
	if svc.metrics == nil {
		return
	}
	if loaded {
		svc.metrics.CacheMissesTotal.WithLabelValues(key).Inc()
		return
	}
	svc.metrics.CacheHitsTotal.WithLabelValues(key).Inc()
}

func toGridRow(row gormModels.TableRow) dtos.GridRow {
	grid := dtos.GridRow(rowToNormalized(row).Values())
	grid["id"] = row.ID
	return grid
}

func rowToNormalized(row gormModels.TableRow) normalize.NormalizedRow {
	return normalize.NormalizedRow{
		TableConfigID:       row.TableConfigID,
		FirstName:           row.FirstName,
		LastName:            row.LastName,
		Email:               row.Email,
		AIPersonalizedEmail: row.AIPersonalizedEmail,
		CurrentPosition:     row.CurrentPosition,
		Location:            row.Location,
		ProfileSummary:      row.ProfileSummary,
		Specialities:        row.Specialities,
		LinkedinURL:         row.LinkedinURL,
		CompanyName:         row.CompanyName,
		Industry:            row.Industry,
		TenureAtPosition:    row.TenureAtPosition,
		TenureAtCompany:     row.TenureAtCompany,
		CompanyDescription:  row.CompanyDescription,
	}
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
