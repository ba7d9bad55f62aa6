package iam

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/db/models"
)

// BearerPrefix is the literal scheme marker of the Authorization header.
const BearerPrefix = "Bearer "

// Authenticator resolves request credentials to a principal.
//
// Return values:
//   - (principal, nil): authentication successful
//   - (nil, nil): credentials not present, try the next authenticator
//   - (nil, error): credentials present but unusable
//
// Callers treat an error exactly like absent credentials; it is only logged.
type Authenticator interface {
	Authenticate(ctx context.Context, req AuthRequest) (*auth.Principal, error)
}

// AuthRequest wraps the HTTP request data authenticators may inspect.
type AuthRequest struct {
	// Headers contains HTTP headers, including Authorization and Cookie
	Headers http.Header
}

// IdentityLookup is the read side of the identity store used during authentication.
type IdentityLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// BearerAuthenticator validates locally issued tokens.
type BearerAuthenticator struct {
	users  IdentityLookup
	tokens *auth.TokenCodec
}

// NewBearerAuthenticator creates a BearerAuthenticator.
func NewBearerAuthenticator(users IdentityLookup, tokens *auth.TokenCodec) *BearerAuthenticator {
	return &BearerAuthenticator{users: users, tokens: tokens}
}

// Authenticate extracts the token subject, loads the identity and checks the
// token is still valid for it.
func (a *BearerAuthenticator) Authenticate(ctx context.Context, req AuthRequest) (*auth.Principal, error) {
	header := req.Headers.Get("Authorization")
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, nil
	}
	token := strings.TrimPrefix(header, BearerPrefix)

	email, err := a.tokens.ExtractSubject(token)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}

	if !a.tokens.IsValid(token, user.Email) {
		return nil, auth.ErrInvalidToken
	}

	principal := auth.NewPrincipal(user, auth.SourceBearer)
	return &principal, nil
}

// SessionAuthenticator resolves the federated session cookie.
type SessionAuthenticator struct {
	users   IdentityLookup
	cookies *auth.SessionCookies
}

// NewSessionAuthenticator creates a SessionAuthenticator.
func NewSessionAuthenticator(users IdentityLookup, cookies *auth.SessionCookies) *SessionAuthenticator {
	return &SessionAuthenticator{users: users, cookies: cookies}
}

// Authenticate reads the signed session cookie and loads the identity it names.
func (a *SessionAuthenticator) Authenticate(ctx context.Context, req AuthRequest) (*auth.Principal, error) {
	r := &http.Request{Header: req.Headers}
	if _, err := r.Cookie(auth.SessionCookieName); err != nil {
		return nil, nil
	}

	email, err := a.cookies.Email(r)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve session identity: %w", err)
	}

	principal := auth.NewPrincipal(user, auth.SourceSession)
	return &principal, nil
}
