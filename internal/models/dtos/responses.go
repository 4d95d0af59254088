package dtos

import (
	"time"

	"clientflow/leadboard/internal/normalize"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message,omitempty"`
	Error        string      `json:"error,omitempty"`
	Details      string      `json:"details,omitempty"`
	ResponseTime string      `json:"responseTime,omitempty"`
	Data         interface{} `json:"data,omitempty"`
}

type CreditsBalanceResponse struct {
	Balance int64 `json:"balance"`
}

type ImportResponse struct {
	TableConfigID    string   `json:"tableConfigId"`
	TableName        string   `json:"tableName"`
	RecordsProcessed int      `json:"recordsProcessed"`
	TotalRecords     int      `json:"totalRecords"`
	FinalRecordCount int64    `json:"finalRecordCount"`
	Errors           []string `json:"errors,omitempty"`
}

type RowCount struct {
	Rows int64 `json:"rows"`
}

type TableSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Count     RowCount  `json:"_count"`
}

type TableInfo struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	AIPrompt *string `json:"aiPrompt"`
}

// GridRow is one row as shown in the grid: "id" plus one entry per header.
type GridRow map[string]string

type TableDetailResponse struct {
	Table        TableInfo `json:"table"`
	Headers      []string  `json:"headers"`
	Rows         []GridRow `json:"rows"`
	TotalRecords int       `json:"totalRecords"`
}

type EmailUpdateResponse struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
}

type AIEmailUpdateResponse struct {
	ID                  string  `json:"id"`
	AIPersonalizedEmail *string `json:"aiPersonalizedEmail"`
}

type DeleteRowsResponse struct {
	Deleted int64 `json:"deleted"`
}

// EnrichmentResponse reports a bulk email extraction or AI email request.
type EnrichmentResponse struct {
	Requested int      `json:"requested"`
	Triggered int      `json:"triggered"`
	Completed int      `json:"completed"`
	Failed    []string `json:"failed,omitempty"`
	Mode      string   `json:"mode"`
}

type ScraperResponse struct {
	RunID  string             `json:"runId"`
	Status string             `json:"status"`
	Items  []normalize.Record `json:"items"`
	Import *ImportResponse    `json:"import,omitempty"`
}

type SpreadsheetImportResponse struct {
	SpreadsheetID   string          `json:"spreadsheetId"`
	Title           string          `json:"title"`
	SheetsProcessed int             `json:"sheetsProcessed"`
	RecordCount     int64           `json:"recordCount"`
	Import          *ImportResponse `json:"import"`
}
