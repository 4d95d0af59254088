package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/models/dtos"
	"clientflow/leadboard/internal/normalize"

	"github.com/go-chi/chi/v5"
)

// ImportTableHandler handles POST /api/tables/import
func ImportTableHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ImportTableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.TableName) == "" {
			common.RespondError(w, initTime, nil, constants.MsgTableNameRequired, http.StatusBadRequest)
			return
		}

		records, ok := parseRecords(req.Data)
		if !ok {
			common.RespondError(w, initTime, nil, constants.MsgDataNotArray, http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Importer.ImportRecords(r.Context(), req.TableName, records)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgImportFailed)
			return
		}

		message := fmt.Sprintf("Table created successfully. Processed %d of %d records.", result.RecordsProcessed, result.TotalRecords)
		common.RespondSuccess(w, initTime, message, result)
	}
}

// parseRecords accepts only a JSON array whose elements are all objects.
func parseRecords(raw json.RawMessage) ([]normalize.Record, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var records []normalize.Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, false
	}
	return records, true
}

// ListTablesHandler handles GET /api/tables
func ListTablesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		tables, err := deps.Services.Tables.List(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgFetchTablesFailed)
			return
		}

		common.RespondSuccess(w, initTime, "Tables fetched successfully", tables)
	}
}

// DeleteTableHandler handles DELETE /api/tables?id=
func DeleteTableHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := deps.Services.Tables.DeleteTable(r.Context(), r.URL.Query().Get("id")); err != nil {
			respondServiceError(w, initTime, err, constants.MsgDeleteTableFailed)
			return
		}

		common.RespondSuccess(w, initTime, "Table deleted successfully", nil)
	}
}

// GetTableHandler handles GET /api/tables/{id}
func GetTableHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		detail, err := deps.Services.Tables.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgFetchRowsFailed)
			return
		}

		common.RespondSuccess(w, initTime, "Table fetched successfully", detail)
	}
}

// UpdateTableHandler handles PUT /api/tables/{id}. A body carrying only aiPrompt updates
// the table's prompt; anything else is a cell edit.
func UpdateTableHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		tableID := chi.URLParam(r, "id")

		var req dtos.UpdateTableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		if req.AIPrompt != nil && req.RecordID == "" && req.Field == "" {
			info, err := deps.Services.Tables.UpdateAIPrompt(r.Context(), tableID, *req.AIPrompt)
			if err != nil {
				respondServiceError(w, initTime, err, constants.MsgUpdateRecordFailed)
				return
			}
			common.RespondSuccess(w, initTime, "AI prompt updated successfully", info)
			return
		}

		row, err := deps.Services.Tables.UpdateCell(r.Context(), tableID, req.RecordID, req.Field, req.Value)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgUpdateRecordFailed)
			return
		}

		common.RespondSuccess(w, initTime, "Record updated successfully", row)
	}
}

// DeleteRowsHandler handles DELETE /api/tables/{id} with {recordIds}
func DeleteRowsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.DeleteRowsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		deleted, err := deps.Services.Tables.DeleteRows(r.Context(), chi.URLParam(r, "id"), req.RecordIDs)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgDeleteRecordsFailed)
			return
		}

		common.RespondSuccess(w, initTime, "Records deleted successfully", dtos.DeleteRowsResponse{Deleted: deleted})
	}
}

// UpdateEmailHandler handles POST /api/tables/{id}/update-email
func UpdateEmailHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.UpdateEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		if pathMismatch(r, req.TableID) {
			common.RespondError(w, initTime, nil, constants.MsgRowNotFound, http.StatusNotFound)
			return
		}

		updated, err := deps.Services.Tables.UpdateEmail(r.Context(), req.TableID, req.RowID, req.Email)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgUpdateEmailFailed)
			return
		}

		common.RespondSuccess(w, initTime, "Email updated successfully", updated)
	}
}

// UpdateAIEmailHandler handles POST /api/tables/{id}/update-ai-email
func UpdateAIEmailHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.UpdateAIEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		if pathMismatch(r, req.TableID) {
			common.RespondError(w, initTime, nil, constants.MsgRowNotFound, http.StatusNotFound)
			return
		}

		updated, err := deps.Services.Tables.UpdateAIEmail(r.Context(), req.TableID, req.RowID, req.AIEmail)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgUpdateAIEmailFailed)
			return
		}

		common.RespondSuccess(w, initTime, "AI email updated successfully", updated)
	}
}

// pathMismatch reports a body tableId that names a different table than the URL.
func pathMismatch(r *http.Request, bodyTableID string) bool {
	pathID := chi.URLParam(r, "id")
	return bodyTableID != "" && pathID != "" && bodyTableID != pathID
}
