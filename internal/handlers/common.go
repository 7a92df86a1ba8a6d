package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"emo-pages-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// User-facing error messages
const (
	msgInvalidBody     = "Invalid request body"
	msgPageNotFound    = "Page not found"
	msgUnauthorized    = "Unauthorized inbox access."
	msgStorageProblem  = "Something went wrong. Please try again."
	msgInternalProblem = "Internal server error"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondJSON sends body as JSON with the given status
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

// decodeJSON reads the request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

// respondServiceError maps the error taxonomy to a status and a fixed,
// plain-language message. The raw error only reaches the log.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *models.ValidationError

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, models.ErrUseAnonymousFlow):
		http.Redirect(w, r, anonymousPath, http.StatusTemporaryRedirect)
	case errors.Is(err, models.ErrNotFound):
		respondError(w, msgPageNotFound, http.StatusNotFound)
	case errors.Is(err, models.ErrUnauthorized):
		respondError(w, msgUnauthorized, http.StatusUnauthorized)
	case models.IsStorage(err):
		log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		respondError(w, msgStorageProblem, http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		respondError(w, msgInternalProblem, http.StatusInternalServerError)
	}
}
