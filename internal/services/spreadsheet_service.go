package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/logging"
	"clientflow/leadboard/internal/models/dtos"
	"clientflow/leadboard/internal/normalize"
	"clientflow/leadboard/internal/providers"
)

var (
	ErrSheetsNotConfigured = errors.New("google sheets credentials not configured")
	ErrSheetsAccessDenied  = errors.New("spreadsheet access denied")
)

// sheetColumns is the A1 column span read from every sheet
const sheetColumns = "A:Z"

// SpreadsheetService imports every sheet of a Google spreadsheet as one lead table
type SpreadsheetService struct {
	sheets   *providers.SheetsProvider
	importer *ImportService
}

// NewSpreadsheetService creates a new spreadsheet service
func NewSpreadsheetService(sheets *providers.SheetsProvider, importer *ImportService) *SpreadsheetService {
	return &SpreadsheetService{
		sheets:   sheets,
		importer: importer,
	}
}

// Import reads each sheet, using its first row as headers, and imports all data rows
// through the batch importer. The table is named after the spreadsheet unless
// tableName is given. Sheets that cannot be read are skipped.
func (svc *SpreadsheetService) Import(ctx context.Context, spreadsheetURL, tableName string) (*dtos.SpreadsheetImportResponse, error) {
	if strings.TrimSpace(spreadsheetURL) == "" {
		return nil, invalid(constants.MsgSpreadsheetRequired)
	}
	spreadsheetID, ok := providers.ExtractSpreadsheetID(spreadsheetURL)
	if !ok {
		return nil, invalid(constants.MsgInvalidSheetsURL)
	}

	doc, _, err := svc.sheets.GetSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return nil, classifySheetsErr(err)
	}

	var records []normalize.Record
	for _, sheetName := range doc.Sheets {
		values, _, err := svc.sheets.GetValues(ctx, spreadsheetID, sheetRange(sheetName))
		if err != nil {
			logging.Warn("Skipping unreadable sheet", "spreadsheet_id", spreadsheetID, "sheet", sheetName, "error", err)
			continue
		}
		records = append(records, sheetRecords(sheetName, values)...)
	}

	if strings.TrimSpace(tableName) == "" {
		tableName = doc.Title
	}

	imported, err := svc.importer.ImportRecords(ctx, tableName, records)
	if err != nil {
		return nil, err
	}

	return &dtos.SpreadsheetImportResponse{
		SpreadsheetID:   spreadsheetID,
		Title:           doc.Title,
		SheetsProcessed: len(doc.Sheets),
		RecordCount:     imported.FinalRecordCount,
		Import:          imported,
	}, nil
}

// sheetRecords maps data rows onto the header row, each record starting with the
// sheet it came from. Blank headers are dropped and missing cells become "".
func sheetRecords(sheetName string, values [][]string) []normalize.Record {
	if len(values) < 2 {
		return nil
	}

	headers := values[0]
	records := make([]normalize.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		var record normalize.Record
		record.Set("sheetName", normalize.String(sheetName))
		for col, header := range headers {
			if header == "" {
				continue
			}
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			record.Set(header, normalize.String(cell))
		}
		records = append(records, record)
	}
	return records
}

func sheetRange(sheetName string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'!" + sheetColumns
}

func classifySheetsErr(err error) error {
	var perr *providers.ProviderError
	if !errors.As(err, &perr) {
		return fmt.Errorf("read spreadsheet: %w", err)
	}

	switch perr.Code {
	case constants.ErrCodeNotConfigured:
		return ErrSheetsNotConfigured
	case constants.ErrCodePermissionDenied, constants.ErrCodeInvalidAPIKey:
		return fmt.Errorf("%w: %s", ErrSheetsAccessDenied, perr.Message)
	case constants.ErrCodeResourceNotFound:
		return invalid(constants.MsgInvalidSheetsURL)
	}
	return fmt.Errorf("read spreadsheet: %w", err)
}
