package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/services/iam"
)

// Authenticate runs the authenticators in order and attaches the first
// principal found to the request context.
//
// Authentication fails open: a missing, malformed or expired credential, an
// unknown subject, a store error or even a panic inside an authenticator is
// logged at debug level and the request continues anonymously. Rejecting
// anonymous requests is left to the gate. A request whose context already
// carries a principal is passed through untouched.
func Authenticate(logger zerolog.Logger, authenticators ...iam.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := auth.PrincipalFromContext(ctx); ok {
				next.ServeHTTP(w, r)
				return
			}

			req := iam.AuthRequest{Headers: r.Header}
			for i, authenticator := range authenticators {
				principal, err := runAuthenticator(authenticator, r, req)
				if err != nil {
					logger.Debug().Err(err).
						Int("authenticator", i).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("authentication failed, continuing anonymously")
					continue
				}
				if principal != nil {
					ctx = auth.SetPrincipal(ctx, *principal)
					break
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func runAuthenticator(a iam.Authenticator, r *http.Request, req iam.AuthRequest) (principal *auth.Principal, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			principal, err = nil, fmt.Errorf("authenticator panic: %v", rec)
		}
	}()
	return a.Authenticate(r.Context(), req)
}
