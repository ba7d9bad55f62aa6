package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/repository"
	"github.com/rs/zerolog"
)

// Dependencies wires the IAM service.
type Dependencies struct {
	Users  repository.UserRepository
	Tokens *auth.TokenCodec
	Logger zerolog.Logger
}

// Service implements the identity write paths and current-user resolution.
type Service struct {
	users  repository.UserRepository
	tokens *auth.TokenCodec
	logger zerolog.Logger
}

// NewService creates the IAM service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Users == nil {
		return nil, errors.New("iam: user repository is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("iam: token codec is required")
	}
	return &Service{
		users:  deps.Users,
		tokens: deps.Tokens,
		logger: deps.Logger.With().Str("component", "iam").Logger(),
	}, nil
}

// Authenticators returns the request authenticators in evaluation order:
// bearer token first, then the federated session when cookies is non-nil.
func (s *Service) Authenticators(cookies *auth.SessionCookies) []Authenticator {
	authenticators := []Authenticator{NewBearerAuthenticator(s.users, s.tokens)}
	if cookies != nil {
		authenticators = append(authenticators, NewSessionAuthenticator(s.users, cookies))
	}
	return authenticators
}

// CurrentUser loads the identity behind the request principal. A missing
// record means the identity was deleted after its token or session was
// issued; the returned error wraps repository.ErrIdentityNotFound.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNoPrincipal
	}

	user, err := s.users.GetByEmail(ctx, principal.Email)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

// BootstrapOpen reports whether no ADMIN identity exists yet.
func (s *Service) BootstrapOpen(ctx context.Context) (bool, error) {
	hasAdmin, err := s.users.ExistsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	return !hasAdmin, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
