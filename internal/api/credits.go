package api

import (
	"encoding/json"
	"net/http"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/constants"
	"clientflow/leadboard/internal/models/dtos"
)

const (
	creditActionTopup  = "topup"
	creditActionDeduct = "deduct"
)

// GetCreditsHandler handles GET /api/credits
func GetCreditsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		balance, err := deps.Services.Credits.GetOrCreate(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgFetchCreditsFailed)
			return
		}

		common.RespondSuccess(w, initTime, "Credits fetched successfully", dtos.CreditsBalanceResponse{Balance: balance})
	}
}

// UpdateCreditsHandler handles POST /api/credits with {action: "topup"|"deduct", amount}
func UpdateCreditsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreditsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}
		if req.Action == "" || req.Amount == nil {
			common.RespondError(w, initTime, nil, constants.MsgActionAmountMissing, http.StatusBadRequest)
			return
		}

		var (
			balance int64
			err     error
		)
		switch req.Action {
		case creditActionTopup:
			balance, err = deps.Services.Credits.Topup(r.Context(), *req.Amount)
		case creditActionDeduct:
			balance, err = deps.Services.Credits.Deduct(r.Context(), *req.Amount, constants.CreditReasonManual)
		default:
			common.RespondError(w, initTime, nil, constants.MsgInvalidAction, http.StatusBadRequest)
			return
		}
		if err != nil {
			respondServiceError(w, initTime, err, constants.MsgUpdateCreditsFailed)
			return
		}

		common.RespondSuccess(w, initTime, "Credits updated successfully", dtos.CreditsBalanceResponse{Balance: balance})
	}
}
