package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/colocash/backend/internal/auth"
	"github.com/colocash/backend/internal/calculator"
	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/service"
	"github.com/colocash/backend/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// respondError maps domain errors onto HTTP statuses. Unrecognized errors and
// a corrupt ledger get a generic 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calculator.ErrUnbalancedLedger):
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, calculator.ErrInvalidSplit),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrEmailExists):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		slog.Error("unhandled error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeJSON decodes the request body into v, refusing unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(service.ErrValidation, err)
	}
	return nil
}
