package services

import (
	"context"
	"encoding/json"
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

	"gorm.io/datatypes"
)

// rowWriter is the part of the row repository the importer needs
type rowWriter interface {
	CreateBatch(ctx context.Context, rows []gormModels.TableRow) error
	CountByTable(ctx context.Context, tableID string) (int64, error)
}

// ImportService turns raw records into a new lead table
type ImportService struct {
	tables  *repositories.TableConfigRepo
	rows    rowWriter
	credits *CreditService
	cache   common.CacheInterface
	metrics *metrics.MetricsRegistry
}

// NewImportService creates a new import service
func NewImportService(
	tables *repositories.TableConfigRepo,
	rows *repositories.TableRowRepo,
	credits *CreditService,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) *ImportService {
	return &ImportService{
		tables:  tables,
		rows:    rows,
		credits: credits,
		cache:   cache,
		metrics: metricsReg,
	}
}

// ImportRecords creates a table named tableName and stores records in batches. A batch
// that fails to persist is reported in Errors and the remaining batches still run.
// Validation failures are returned before anything is written.
func (svc *ImportService) ImportRecords(ctx context.Context, tableName string, records []normalize.Record) (*dtos.ImportResponse, error) {
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		svc.reject("missing_name")
		return nil, invalid(constants.MsgTableNameRequired)
	}
	if len(records) == 0 {
		svc.reject("empty")
		return nil, invalid(constants.MsgDataEmpty)
	}
	if len(records) > constants.MaxImportRecords {
		svc.reject("too_many_records")
		return nil, invalid(constants.MsgTooManyRecords)
	}

	start := time.Now()
	defer func() {
		if svc.metrics != nil {
			svc.metrics.ImportDuration.Observe(time.Since(start).Seconds())
		}
	}()

	table, err := svc.tables.Create(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("create table config: %w", err)
	}

	var (
		processed int
		errs      []string
	)

	for i := 0; i < len(records); i += constants.ImportBatchSize {
		end := min(i+constants.ImportBatchSize, len(records))
		batchIndex := i / constants.ImportBatchSize

		batch, err := buildRows(table.ID, records[i:end], i)
		if err == nil {
			err = svc.rows.CreateBatch(ctx, batch)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("batch %d: %v", batchIndex, err))
			if svc.metrics != nil {
				svc.metrics.BatchFailuresTotal.Inc()
			}
			logging.Warn("Import batch failed",
				"table_id", table.ID,
				"batch", batchIndex,
				"size", end-i,
				"error", err,
			)
			continue
		}

		processed += len(batch)
		if svc.metrics != nil {
			svc.metrics.RowsImportedTotal.Add(float64(len(batch)))
		}
	}

	finalCount, err := svc.rows.CountByTable(ctx, table.ID)
	if err != nil {
		return nil, fmt.Errorf("count imported rows: %w", err)
	}

	if finalCount > 0 {
		_ = svc.credits.BulkDeduct(ctx, finalCount*constants.CostPerImportedRow, constants.CreditReasonImport)
	}

	if svc.cache != nil {
		svc.cache.Delete(string(constants.CachePrefixTableList))
	}

	logging.Info("Table imported",
		"table_id", table.ID,
		"processed", processed,
		"total", len(records),
		"final_count", finalCount,
		"failed_batches", len(errs),
	)

	return &dtos.ImportResponse{
		TableConfigID:    table.ID,
		TableName:        table.Name,
		RecordsProcessed: processed,
		TotalRecords:     len(records),
		FinalRecordCount: finalCount,
		Errors:           errs,
	}, nil
}

// buildRows normalizes one batch. offset is the index of the batch's first record in
// the whole import and keeps rows in submission order.
func buildRows(tableID string, records []normalize.Record, offset int) ([]gormModels.TableRow, error) {
	rows := make([]gormModels.TableRow, 0, len(records))

	for i, record := range records {
		source, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", offset+i, err)
		}

		n := normalize.Normalize(record, tableID)
		rows = append(rows, gormModels.TableRow{
			TableConfigID:       tableID,
			Position:            offset + i,
			FirstName:           n.FirstName,
			LastName:            n.LastName,
			Email:               n.Email,
			AIPersonalizedEmail: n.AIPersonalizedEmail,
			CurrentPosition:     n.CurrentPosition,
			Location:            n.Location,
			ProfileSummary:      n.ProfileSummary,
			Specialities:        n.Specialities,
			LinkedinURL:         n.LinkedinURL,
			CompanyName:         n.CompanyName,
			Industry:            n.Industry,
			TenureAtPosition:    n.TenureAtPosition,
			TenureAtCompany:     n.TenureAtCompany,
			CompanyDescription:  n.CompanyDescription,
			Source:              datatypes.JSON(source),
		})
	}

	return rows, nil
}

func (svc *ImportService) reject(reason string) {
	if svc.metrics != nil {
		svc.metrics.RecordsRejectedTotal.WithLabelValues(reason).Inc()
	}
}
