package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zitadel/oidc/v3/pkg/client/rp"

	"github.com/librarydirecto/catalogapi/internal/config"
)

// FederatedProvider is the relying party of the patron login. Its state and
// PKCE verifier cookies are sealed by the session cookie handler.
type FederatedProvider struct {
	rp rp.RelyingParty
}

// NewFederatedProvider discovers the issuer and creates the relying party.
func NewFederatedProvider(ctx context.Context, cfg config.OIDCConfig, cookies *SessionCookies) (*FederatedProvider, error) {
	options := []rp.Option{
		rp.WithCookieHandler(cookies.Handler()),
		rp.WithVerifierOpts(rp.WithIssuedAtMaxAge(time.Minute)),
		rp.WithPKCE(cookies.Handler()),
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.Issuer, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI,
		cfg.Scopes, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC relying party: %w", err)
	}

	return &FederatedProvider{rp: relyingParty}, nil
}

// WrapRelyingParty adapts an already configured relying party.
func WrapRelyingParty(relyingParty rp.RelyingParty) *FederatedProvider {
	return &FederatedProvider{rp: relyingParty}
}

// RP returns the underlying relying party.
func (p *FederatedProvider) RP() rp.RelyingParty {
	return p.rp
}

// AuthCodeURL returns the authorization endpoint URL for state.
func (p *FederatedProvider) AuthCodeURL(state string) string {
	return rp.AuthURL(state, p.rp)
}

// NewState returns an unguessable OAuth state value.
func NewState() string {
	return uuid.NewString()
}
