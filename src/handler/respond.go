package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"orderwatch/src/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// writeError maps the error taxonomy to HTTP statuses: validation 400,
// not-found 404, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case model.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Order not found"})
	default:
		logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}
