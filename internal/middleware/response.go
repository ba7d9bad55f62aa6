package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorBody whose error field is the status text.
func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	WriteJSON(w, status, ErrorBody{
		Error:   http.StatusText(status),
		Message: message,
		Details: details,
	})
}

func unauthenticated(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "Authentication required", nil)
}

func forbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, "Access denied", nil)
}
