// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/model"
)

// writeResult writes a successful envelope.
func writeResult(w http.ResponseWriter, status int, message string, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Envelope{
		Status:  true,
		Message: message,
		Result:  result,
	})
}

// writeErr maps a business error to its HTTP status and writes the failure
// envelope. Unclassified errors are reported generically; their detail stays
// in the logs.
func writeErr(w http.ResponseWriter, err error) {
	message := "an internal error occurred"
	status := http.StatusInternalServerError

	if e, ok := apperr.As(err); ok {
		switch e.Kind {
		case apperr.KindValidation:
			status = http.StatusBadRequest
			message = e.Message
		case apperr.KindNotFound:
			status = http.StatusNotFound
			message = e.Message
		case apperr.KindAccessDenied:
			status = http.StatusForbidden
			message = e.Message
		case apperr.KindQuotaExceeded:
			status = http.StatusForbidden
			message = e.Message
		case apperr.KindConflict:
			status = http.StatusConflict
			message = e.Message
		case apperr.KindAuthentication:
			status = http.StatusUnauthorized
			message = e.Message
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Envelope{
		Status:  false,
		Message: message,
	})
}

// writeBadRequest writes a validation failure envelope.
func writeBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(model.Envelope{
		Status:  false,
		Message: message,
	})
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
