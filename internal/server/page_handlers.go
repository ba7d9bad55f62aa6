package server

import (
	"net/http"

	"github.com/librarydirecto/catalogapi/internal/middleware"
)

// LoginOptions describes the login mechanisms offered to clients.
type LoginOptions struct {
	LocalLogin     string `json:"localLogin"`
	FederatedLogin string `json:"federatedLogin,omitempty"`
}

// HandleHome is the public landing endpoint.
func HandleHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"service": "catalogapi",
			"login":   "/login",
		})
	}
}

// HandleLoginPage advertises the local login endpoint and, when configured,
// the federated login entry point.
func HandleLoginPage(federatedEnabled bool) http.HandlerFunc {
	opts := LoginOptions{LocalLogin: "/api/auth/login"}
	if federatedEnabled {
		opts.FederatedLogin = federatedLoginPath
	}
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, opts)
	}
}

// HandleErrorPage reports a failed browser flow. The reason, when present,
// comes from the error query parameter.
func HandleErrorPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reason := r.URL.Query().Get("error")
		if reason == "" {
			reason = "Login failed"
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"message": reason,
			"login":   "/login",
		})
	}
}
