// Package shared holds the JSON envelope helpers every handler uses, so
// error translation stays in one place.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "innkeeper/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ToHTTPStatus maps a domain error code to a response status. Unknown
// codes fall through to 500.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeNotAuthenticated:
		return http.StatusUnauthorized
	case dErrors.CodePermissionDenied:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeInsertFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders a domain error as the JSON envelope. Non-domain
// errors become an opaque 500.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: string(dErrors.CodeUnexpected)}
	status := http.StatusInternalServerError

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		resp.Error = string(domainErr.Code)
		resp.Message = domainErr.Message
		resp.Details = domainErr.Details
		status = ToHTTPStatus(domainErr.Code)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON renders a success payload.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
