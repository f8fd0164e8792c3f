package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finbank/finbank-backend/internal/domain"
)

// errorResponse is the JSON body for every failed request
type errorResponse struct {
	Message   string `json:"message"`
	Remaining string `json:"remaining,omitempty"`
}

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respondError maps a domain error to an HTTP status and JSON message.
// Unknown errors become a generic 500: raw internal error text is
// never sent to the client.
func respondError(w http.ResponseWriter, err error) {
	if le, ok := domain.IsLimitExceeded(err); ok {
		respondJSON(w, http.StatusForbidden, errorResponse{
			Message:   "Declined: " + le.Error(),
			Remaining: le.Remaining.StringFixed(2),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds):
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Insufficient funds"})
	case errors.Is(err, domain.ErrCardFrozen):
		respondJSON(w, http.StatusForbidden, errorResponse{Message: "Declined: Card is Frozen"})
	case errors.Is(err, domain.ErrQuoteUnavailable):
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "Price unavailable"})
	default:
		respondJSON(w, http.StatusInternalServerError, errorResponse{Message: "Server Error"})
	}
}
