package auth

import (
	"context"
	"slices"

	"github.com/librarydirecto/catalogapi/internal/db/models"
)

// Source identifies which mechanism authenticated a request.
type Source string

const (
	SourceBearer  Source = "bearer"
	SourceSession Source = "session"
)

// Principal is the per-request security context: the resolved identity and
// the authorities it was granted.
type Principal struct {
	UserID      int64
	Email       string
	Name        string
	Authorities []string
	Source      Source
}

// AuthorityForRole maps a stored role to its granted authority. The authority
// is the role name itself ("ADMIN"), everywhere.
func AuthorityForRole(role models.Role) string {
	return string(role)
}

// NewPrincipal builds the security context for user with its single authority.
func NewPrincipal(user *models.User, source Source) Principal {
	return Principal{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.DisplayName(),
		Authorities: []string{AuthorityForRole(user.Role)},
		Source:      source,
	}
}

// HasAuthority reports whether the principal was granted authority.
func (p Principal) HasAuthority(authority string) bool {
	return slices.Contains(p.Authorities, authority)
}

type principalContextKey struct{}

// SetPrincipal stores the authenticated principal on the context for downstream consumers.
func SetPrincipal(ctx context.Context, principal Principal) context.Context {
	principal.Authorities = append([]string(nil), principal.Authorities...)
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext retrieves the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(Principal)
	return principal, ok
}
