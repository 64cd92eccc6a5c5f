package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/safariops/tripdesk/internal/domain"
)

// ErrorDetail is the machine-readable part of an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON envelope every error body uses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeJSON encodes v with the given status. Encoding failures are silently
// dropped; by then the status line has already been sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto the HTTP status and error body the
// dashboard expects. Unknown errors become an opaque 500 so internals never
// leak to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionClosed):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "not_found", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrSessionExpired):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: ErrorDetail{Code: "session_expired", Message: "backend session expired; sign in again"},
		})
	case errors.Is(err, domain.ErrUpstream):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error: ErrorDetail{Code: "upstream_error", Message: "travel backend request failed"},
		})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "internal_error", Message: "internal server error"},
		})
	}
}

// writeRequestError rejects a malformed request before it reaches the
// service layer (bad JSON, bad URL parameter).
func writeRequestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error: ErrorDetail{Code: "validation_error", Message: message},
	})
}

// unwrapMessage extracts the human-readable tail from a wrapped sentinel
// error, e.g.
// "service.ReviewService.Confirm: validation error: trip name is not resolved"
// → "trip name is not resolved".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []string{"validation error: ", "not found: ", "review session closed: "} {
		if i := strings.LastIndex(msg, marker); i >= 0 {
			return msg[i+len(marker):]
		}
	}
	// Strip "pkg.Type.Method: " prefixes when no sentinel text is embedded.
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
