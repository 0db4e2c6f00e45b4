package handler

import (
	"encoding/json"
	"net/http"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse is the standardised error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Warn().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a service error to a transport response. The error
// taxonomy carries the status decision; messages pass through unmodified.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	switch model.KindOf(err) {
	case model.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error(), logger)
	case model.KindConflict, model.KindOutOfStock:
		writeError(w, http.StatusConflict, err.Error(), logger)
	case model.KindUnprocessable:
		writeError(w, http.StatusUnprocessableEntity, err.Error(), logger)
	default:
		logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal server error", logger)
	}
}
