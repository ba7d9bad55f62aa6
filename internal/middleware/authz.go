package middleware

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/librarydirecto/catalogapi/internal/auth"
)

// Gate enforces the policy table in front of handlers.
type Gate struct {
	policy *auth.Policy
	logger zerolog.Logger
}

// NewGate constructs a Gate over policy.
func NewGate(policy *auth.Policy, logger zerolog.Logger) (*Gate, error) {
	if policy == nil {
		return nil, errors.New("gate requires a policy")
	}
	return &Gate{policy: policy, logger: logger.With().Str("component", "gate").Logger()}, nil
}

// Require returns a middleware admitting only requests the policy allows for op.
// Denials are answered with a structured 401 or 403 body.
func (g *Gate) Require(op auth.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var principal *auth.Principal
			if p, ok := auth.PrincipalFromContext(r.Context()); ok {
				principal = &p
			}

			decision, err := g.policy.Decide(r.Context(), principal, op)
			if err != nil {
				g.logger.Error().Err(err).Str("operation", string(op)).Msg("policy evaluation failed")
			}

			switch decision {
			case auth.Allow:
				next.ServeHTTP(w, r)
			case auth.Unauthorized:
				unauthenticated(w)
			default:
				g.logger.Debug().
					Str("operation", string(op)).
					Str("email", principalEmail(principal)).
					Msg("access denied")
				forbidden(w)
			}
		})
	}
}

// Handle wraps h with Require(op).
func (g *Gate) Handle(op auth.Operation, h http.HandlerFunc) http.Handler {
	return g.Require(op)(h)
}

func principalEmail(p *auth.Principal) string {
	if p == nil {
		return ""
	}
	return p.Email
}
