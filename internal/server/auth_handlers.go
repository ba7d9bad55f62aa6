package server

import (
	"net/http"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/middleware"
	"github.com/librarydirecto/catalogapi/internal/services/iam"

	"github.com/rs/zerolog/hlog"
)

// HandleLogin authenticates staff with email and password and returns a
// bearer token.
func HandleLogin(iamService *iam.Service, v *Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeAndValidate(w, r, v, &req) {
			return
		}

		result, err := iamService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			respondError(w, r, err)
			return
		}

		name := ""
		if result.User.Name != nil {
			name = *result.User.Name
		}
		middleware.WriteJSON(w, http.StatusOK, LoginResponse{
			Token: result.Token,
			Email: result.User.Email,
			Name:  name,
			Role:  string(result.User.Role),
		})
	}
}

// HandleRegisterStaff creates a LIBRARIAN or ADMIN identity with a password.
func HandleRegisterStaff(iamService *iam.Service, v *Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterStaffRequest
		if !decodeAndValidate(w, r, v, &req) {
			return
		}

		user, err := iamService.RegisterStaff(r.Context(), iam.StaffRegistration{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Role:     models.Role(req.Role),
		})
		if err != nil {
			respondError(w, r, err)
			return
		}

		middleware.WriteJSON(w, http.StatusCreated, toUserDto(user))
	}
}

// HandleCurrentUser returns the identity behind the request. A principal
// whose record has since disappeared is an internal error.
func HandleCurrentUser(iamService *iam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := iamService.CurrentUser(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		middleware.WriteJSON(w, http.StatusOK, toUserDto(user))
	}
}

// HandleSSOLogin starts the authorization code flow. The relying party sets
// the state and PKCE verifier cookies and redirects to the provider.
func HandleSSOLogin(provider *auth.FederatedProvider) http.HandlerFunc {
	return rp.AuthURLHandler(auth.NewState, provider.RP())
}

// HandleSSOCallback exchanges the authorization code, verifies the ID token
// and completes the login.
func HandleSSOCallback(provider *auth.FederatedProvider, iamService *iam.Service, cookies *auth.SessionCookies) http.HandlerFunc {
	return rp.CodeExchangeHandler(completeFederatedLogin(iamService, cookies), provider.RP())
}

// completeFederatedLogin reconciles the verified identity, issues the session
// cookie and sends the browser home.
func completeFederatedLogin(iamService *iam.Service, cookies *auth.SessionCookies) rp.CodeExchangeCallback[*oidc.IDTokenClaims] {
	return func(w http.ResponseWriter, r *http.Request, tokens *oidc.Tokens[*oidc.IDTokenClaims], state string, _ rp.RelyingParty) {
		claims, err := auth.ClaimsFromIDToken(tokens.IDTokenClaims)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("federated login without usable email claim")
			middleware.WriteError(w, http.StatusBadGateway, "Identity provider did not supply an email address", nil)
			return
		}

		user, err := iamService.Reconcile(r.Context(), claims)
		if err != nil {
			respondError(w, r, err)
			return
		}

		if err := cookies.Issue(w, user.Email); err != nil {
			respondError(w, r, err)
			return
		}

		hlog.FromRequest(r).Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("federated login")
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// HandleLogout clears the federated session cookie. Bearer tokens are
// stateless and stay valid until they expire.
func HandleLogout(cookies *auth.SessionCookies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookies.Clear(w)
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}
