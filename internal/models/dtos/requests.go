package dtos

import (
	"encoding/json"

	"clientflow/leadboard/internal/normalize"
)

// ImportTableRequest is the body of POST /api/tables/import. Data stays raw so that a
// non-array payload can be reported with its own message.
type ImportTableRequest struct {
	TableName string          `json:"tableName"`
	Data      json.RawMessage `json:"data"`
}

type CreditsRequest struct {
	Action string `json:"action"`
	Amount *int64 `json:"amount"`
}

// UpdateTableRequest is the body of PUT /api/tables/{id}. Either a cell edit
// (recordId, field, value) or a prompt update (aiPrompt alone).
type UpdateTableRequest struct {
	RecordID string          `json:"recordId"`
	Field    string          `json:"field"`
	Value    normalize.Value `json:"value"`
	AIPrompt *string         `json:"aiPrompt"`
}

type DeleteRowsRequest struct {
	RecordIDs []string `json:"recordIds"`
}

type UpdateEmailRequest struct {
	RowID   string `json:"rowId"`
	TableID string `json:"tableId"`
	Email   string `json:"email"`
}

type UpdateAIEmailRequest struct {
	RowID   string `json:"rowId"`
	TableID string `json:"tableId"`
	AIEmail string `json:"aiEmail"`
}

type RowIDsRequest struct {
	RowIDs []string `json:"rowIds"`
}

// CallbackRequest is what an enrichment webhook posts back to its callback URL.
type CallbackRequest struct {
	Value string `json:"value"`
}

type SalesNavigatorRequest struct {
	SearchName  string `json:"searchName"`
	SalesNavURL string `json:"salesNavUrl"`
}

type RunScraperRequest struct {
	SearchName string `json:"searchName"`
	SearchURL  string `json:"searchUrl"`
	LiAt       string `json:"liAt"`
	TableName  string `json:"tableName,omitempty"`
}

type ImportSpreadsheetRequest struct {
	SpreadsheetURL string `json:"spreadsheetUrl"`
	TableName      string `json:"tableName,omitempty"`
}
