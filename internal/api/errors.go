package api

import (
	"errors"
	"net/http"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/services"
)

// respondServiceError maps service errors to HTTP responses. fallback is the message
// used for anything unexpected, with the error text reported as details.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error, fallback string) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		common.RespondError(w, initTime, nil, validationErr.Message, http.StatusBadRequest)
		return
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		common.RespondError(w, initTime, nil, notFoundErr.Message, http.StatusNotFound)
		return
	}

	status, message := mapErrorToHTTPStatus(err, fallback)
	common.RespondError(w, initTime, err, message, status)
}

func mapErrorToHTTPStatus(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, services.ErrInsufficientCredits):
		return http.StatusPaymentRequired, constants.MsgInsufficientCredits
	case errors.Is(err, services.ErrCallbackRejected):
		return http.StatusUnauthorized, constants.MsgCallbackRejected
	case errors.Is(err, services.ErrSheetsAccessDenied):
		return http.StatusForbidden, constants.MsgSheetsAccessDenied
	case errors.Is(err, services.ErrSheetsNotConfigured):
		return http.StatusInternalServerError, constants.MsgSheetsNotConfigured
	case errors.Is(err, services.ErrWebhookNotConfigured):
		return http.StatusInternalServerError, constants.MsgWebhookNotConfigured
	case errors.Is(err, services.ErrScrapingFailed):
		return http.StatusBadGateway, constants.MsgScrapingFailed
	default:
		return http.StatusInternalServerError, fallback
	}
}
