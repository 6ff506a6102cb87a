package http

import (
	"encoding/json"
	"net/http"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/logger"
)

type apiResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Status: status, Message: message, Data: data})
}

// writeError maps the app error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindInvalidTransition:
		status = http.StatusBadRequest
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindForbidden:
		status = http.StatusForbidden
	case apperror.KindConflict:
		status = http.StatusConflict
	case apperror.KindTransientStorage:
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		logger.Error("request failed", "status", status, "error", err)
		writeJSON(w, status, nil, "an internal error occurred")
		return
	}
	writeJSON(w, status, nil, err.Error())
}
