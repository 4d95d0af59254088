package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/models/dtos"
	"clientflow/leadboard/internal/services"

	"github.com/go-chi/chi/v5"
)

// ExtractEmailsHandler handles POST /api/tables/{id}/extract-emails
func ExtractEmailsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.RowIDsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Enrichment.ExtractEmails(r.Context(), chi.URLParam(r, "id"), req.RowIDs)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgEnrichmentFailed)
			return
		}

		message := fmt.Sprintf("Email extraction started for %d of %d rows", result.Triggered, result.Requested)
		common.RespondSuccess(w, initTime, message, result)
	}
}

// GenerateAIEmailsHandler handles POST /api/tables/{id}/generate-ai-emails
func GenerateAIEmailsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.RowIDsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Enrichment.GenerateAIEmails(r.Context(), chi.URLParam(r, "id"), req.RowIDs)
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgEnrichmentFailed)
			return
		}

		message := fmt.Sprintf("AI email generation started for %d of %d rows", result.Triggered, result.Requested)
		if result.Mode == services.ModeGemini {
			message = fmt.Sprintf("AI emails generated for %d of %d rows", result.Completed, result.Requested)
		}
		common.RespondSuccess(w, initTime, message, result)
	}
}

// WebhookCallbackHandler handles POST /api/webhook/callback/{kind}?token=
func WebhookCallbackHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CallbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		kind := constants.CallbackKind(chi.URLParam(r, "kind"))
		updated, err := deps.Services.Enrichment.HandleCallback(r.Context(), kind, r.URL.Query().Get("token"), req.Value)
		if err != nil {
			fallback := constants.MsgUpdateEmailFailed
			if kind == constants.CallbackKindAIEmail {
				fallback = constants.MsgUpdateAIEmailFailed
			}
			respondServiceError(w, initTime, err, fallback)
			return
		}

		common.RespondSuccess(w, initTime, "Callback applied", updated)
	}
}
