package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"
	"golang.org/x/oauth2"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/db/models"
)

func idTokens(claims map[string]any) *oidc.Tokens[*oidc.IDTokenClaims] {
	return &oidc.Tokens[*oidc.IDTokenClaims]{
		Token:         &oauth2.Token{AccessToken: "access-token", TokenType: "Bearer"},
		IDTokenClaims: &oidc.IDTokenClaims{Claims: claims},
		IDToken:       "raw-id-token",
	}
}

func TestCompleteFederatedLogin(t *testing.T) {
	s := newTestServer(t)
	callback := completeFederatedLogin(s.iam, s.cookies)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login/oauth2/code/google?code=abc&state=xyz", nil)
	callback(rec, req, idTokens(map[string]any{
		"email":   "patron@example.com",
		"name":    "Patron",
		"picture": "https://img.example.com/p.png",
	}), "xyz", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)

	user, err := s.users.GetByEmail(context.Background(), "patron@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.AuthSourceFederated, user.AuthSource)
	assert.Nil(t, user.PasswordHash)

	me := s.do(request{method: http.MethodGet, path: "/api/users/me", cookie: cookies[0]})
	require.Equal(t, http.StatusOK, me.Code)
	dto := decode[UserDto](t, me)
	assert.Equal(t, "Patron", *dto.Name)
	assert.Equal(t, "https://img.example.com/p.png", *dto.Picture)

	t.Run("second login updates the profile only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		callback(rec, httptest.NewRequest(http.MethodGet, "/login/oauth2/code/google", nil),
			idTokens(map[string]any{"email": "patron@example.com", "name": "Renamed"}), "", nil)
		require.Equal(t, http.StatusFound, rec.Code)

		all, err := s.users.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 1)
		assert.Equal(t, "Renamed", *all[0].Name)
	})
}

func TestCompleteFederatedLogin_MissingEmail(t *testing.T) {
	s := newTestServer(t)
	callback := completeFederatedLogin(s.iam, s.cookies)

	rec := httptest.NewRecorder()
	callback(rec, httptest.NewRequest(http.MethodGet, "/login/oauth2/code/google", nil),
		idTokens(map[string]any{"name": "Nameless"}), "", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	all, err := s.users.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCurrentUser_DeletedIdentityIsInternalError(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req = req.WithContext(auth.SetPrincipal(req.Context(), auth.Principal{
		UserID:      42,
		Email:       "gone@example.com",
		Authorities: []string{"USER"},
	}))

	rec := httptest.NewRecorder()
	HandleCurrentUser(s.iam).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "gone@example.com")
}

func withTestProvider(t *testing.T) serverOption {
	return func(opts *RouterOptions) {
		relyingParty, err := rp.NewRelyingPartyOAuth(&oauth2.Config{
			ClientID:     "catalog-client",
			ClientSecret: "catalog-secret",
			RedirectURL:  "http://localhost:8080" + federatedCallbackPath,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://idp.example.com/authorize",
				TokenURL: "https://idp.example.com/token",
			},
		}, rp.WithCookieHandler(opts.Cookies.Handler()), rp.WithPKCE(opts.Cookies.Handler()))
		require.NoError(t, err)
		opts.Provider = auth.WrapRelyingParty(relyingParty)
	}
}

func TestRouter_FederatedLoginStart(t *testing.T) {
	s := newTestServer(t, withTestProvider(t))

	rec := s.do(request{method: http.MethodGet, path: federatedLoginPath})
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "idp.example.com", location.Host)
	assert.NotEmpty(t, location.Query().Get("state"))
	assert.NotEmpty(t, location.Query().Get("code_challenge"))

	opts := decode[LoginOptions](t, s.do(request{method: http.MethodGet, path: "/login"}))
	assert.Equal(t, federatedLoginPath, opts.FederatedLogin)
}

func TestRouter_FederatedCallbackRejectsMissingState(t *testing.T) {
	s := newTestServer(t, withTestProvider(t))

	rec := s.do(request{method: http.MethodGet, path: federatedCallbackPath + "?code=abc&state=forged"})
	assert.NotEqual(t, http.StatusFound, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, auth.SessionCookieName, c.Name)
	}
}
