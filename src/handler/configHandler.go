package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type autoExitPolicy interface {
	SetAutoExitOnTrigger(enabled bool)
	AutoExitOnTrigger() bool
}

type autoExitRequest struct {
	AutoRemoveOnExit *bool `json:"autoRemoveOnExit"`
}

// AutoExitConfigHandler handles POST /api/config/auto-remove, flipping
// whether a fired exit rule also transitions the order to EXITED.
func AutoExitConfigHandler(policy autoExitPolicy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req autoExitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if req.AutoRemoveOnExit == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "'autoRemoveOnExit' is required"})
			return
		}

		policy.SetAutoExitOnTrigger(*req.AutoRemoveOnExit)
		writeJSON(w, http.StatusOK, messageResponse{
			Message: fmt.Sprintf("autoRemoveOnExit set to %t", *req.AutoRemoveOnExit),
		})
	}
}
