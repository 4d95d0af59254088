package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/models/dtos"
	"clientflow/leadboard/internal/services"
)

// SalesNavigatorHandler handles POST /api/webhook/sales-navigator. The webhook's answer
// is written as-is, without the usual envelope.
func SalesNavigatorHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.SalesNavigatorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		result, err := deps.Services.SalesNav.Submit(r.Context(), req.SearchName, req.SalesNavURL)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgSubmitFailed)
			return
		}

		common.WriteJSON(w, result.StatusCode, result.Body)
	}
}

// RunScraperHandler handles POST /api/run-scraper
func RunScraperHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.RunScraperRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Scraper.Run(r.Context(), services.ScrapeRequest{
			SearchName: req.SearchName,
			SearchURL:  req.SearchURL,
			LiAt:       req.LiAt,
			TableName:  req.TableName,
		})
		if errors.Is(err, services.ErrScrapingFailed) && result != nil {
			err = fmt.Errorf("run %s finished with status %s: %w", result.RunID, result.Status, err)
		}
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgScraperServerError)
			return
		}

		message := fmt.Sprintf("Scraper finished with %d results", len(result.Items))
		if result.Import != nil {
			message = fmt.Sprintf("Scraper finished. Imported %d of %d results into %s.",
				result.Import.FinalRecordCount, len(result.Items), result.Import.TableName)
		}
		common.RespondSuccess(w, initTime, message, result)
	}
}

// ImportSpreadsheetHandler handles POST /api/import-spreadsheet
func ImportSpreadsheetHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ImportSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Spreadsheets.Import(r.Context(), req.SpreadsheetURL, req.TableName)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgSpreadsheetFailed)
			return
		}

		message := fmt.Sprintf("Imported %d records from %d sheets", result.RecordCount, result.SheetsProcessed)
		common.RespondSuccess(w, initTime, message, result)
	}
}
