package auth

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// FederatedClaims is the profile delivered by the identity provider after a
// verified login.
type FederatedClaims struct {
	Email   string `mapstructure:"email"`
	Name    string `mapstructure:"name"`
	Picture string `mapstructure:"picture"`
}

// ClaimsFromMap decodes a raw claim set. Unknown claims are ignored.
func ClaimsFromMap(raw map[string]any) (FederatedClaims, error) {
	var claims FederatedClaims
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &claims,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return FederatedClaims{}, fmt.Errorf("create claims decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return FederatedClaims{}, fmt.Errorf("decode claims: %w", err)
	}
	claims.Email = strings.TrimSpace(claims.Email)
	return claims, nil
}

// ClaimsFromIDToken extracts the profile from verified ID token claims. The
// raw claim map wins; typed fields fill what it lacks.
func ClaimsFromIDToken(idToken *oidc.IDTokenClaims) (FederatedClaims, error) {
	if idToken == nil {
		return FederatedClaims{}, ErrMissingEmailClaim
	}

	claims, err := ClaimsFromMap(idToken.Claims)
	if err != nil {
		return FederatedClaims{}, err
	}
	if claims.Email == "" {
		claims.Email = strings.TrimSpace(idToken.Email)
	}
	if claims.Name == "" {
		claims.Name = idToken.Name
	}
	if claims.Picture == "" {
		claims.Picture = idToken.Picture
	}

	if claims.Email == "" {
		return FederatedClaims{}, ErrMissingEmailClaim
	}
	return claims, nil
}
