package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/middleware"
	"github.com/librarydirecto/catalogapi/internal/services/catalog"
	"github.com/librarydirecto/catalogapi/internal/services/iam"
)

const (
	federatedLoginPath    = "/oauth2/authorization/google"
	federatedCallbackPath = "/login/oauth2/code/google"
)

// RouterOptions controls the construction of the catalog HTTP router.
type RouterOptions struct {
	IAM        *iam.Service
	Books      *catalog.BookService
	Categories *catalog.CategoryService
	Policy     *auth.Policy

	// Cookies backs the federated session. Nil disables session
	// authentication and logout.
	Cookies *auth.SessionCookies
	// Provider enables the federated login handshake. It requires Cookies.
	Provider *auth.FederatedProvider

	Logger      zerolog.Logger
	CORSOptions *cors.Options
	Middleware  []func(http.Handler) http.Handler
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles the chi.Router: shared middleware, the authenticators,
// and every handler behind its policy gate.
func NewRouter(opts RouterOptions) (chi.Router, error) {
	if opts.IAM == nil || opts.Books == nil || opts.Categories == nil || opts.Policy == nil {
		return nil, errors.New("router requires IAM, book, category services and a policy")
	}
	if opts.Provider != nil && opts.Cookies == nil {
		return nil, errors.New("federated login requires session cookies")
	}

	gate, err := middleware.NewGate(opts.Policy, opts.Logger)
	if err != nil {
		return nil, err
	}
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(chimiddleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Use(middleware.Authenticate(opts.Logger, opts.IAM.Authenticators(opts.Cookies)...))

	// Requests that match no route still need an identity.
	r.NotFound(gate.Handle(auth.OpUnmatched, func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Resource not found", nil)
	}).ServeHTTP)
	r.MethodNotAllowed(gate.Handle(auth.OpUnmatched, func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	}).ServeHTTP)

	r.With(gate.Require(auth.OpHome)).Get("/", HandleHome())
	r.With(gate.Require(auth.OpLoginPage)).Get("/login", HandleLoginPage(opts.Provider != nil))
	r.With(gate.Require(auth.OpErrorPage)).Get("/error", HandleErrorPage())

	// The handshake endpoints are part of the session mechanism and sit
	// outside the gate.
	if opts.Provider != nil {
		r.Get(federatedLoginPath, HandleSSOLogin(opts.Provider))
		r.Get(federatedCallbackPath, HandleSSOCallback(opts.Provider, opts.IAM, opts.Cookies))
	}
	if opts.Cookies != nil {
		r.Post("/logout", HandleLogout(opts.Cookies))
	}

	r.With(gate.Require(auth.OpLocalLogin)).Post("/api/auth/login", HandleLogin(opts.IAM, validator))
	r.With(gate.Require(auth.OpRegisterStaff)).Post("/api/auth/register-staff", HandleRegisterStaff(opts.IAM, validator))
	r.With(gate.Require(auth.OpCurrentUser)).Get("/api/users/me", HandleCurrentUser(opts.IAM))

	books := NewBookHandlers(opts.Books, validator)
	r.With(gate.Require(auth.OpListBooks)).Get("/api/books", books.List)
	r.With(gate.Require(auth.OpCreateBook)).Post("/api/books", books.Create)
	r.With(gate.Require(auth.OpGetBook)).Get("/api/books/{id}", books.Get)
	r.With(gate.Require(auth.OpUpdateBook)).Put("/api/books/{id}", books.Update)
	r.With(gate.Require(auth.OpDeleteBook)).Delete("/api/books/{id}", books.Delete)

	categories := NewCategoryHandlers(opts.Categories, validator)
	r.With(gate.Require(auth.OpListCategories)).Get("/api/categories", categories.List)
	r.With(gate.Require(auth.OpCreateCategory)).Post("/api/categories", categories.Create)
	r.With(gate.Require(auth.OpGetCategory)).Get("/api/categories/{id}", categories.Get)
	r.With(gate.Require(auth.OpUpdateCategory)).Put("/api/categories/{id}", categories.Update)
	r.With(gate.Require(auth.OpDeleteCategory)).Delete("/api/categories/{id}", categories.Delete)

	return r, nil
}

// requestIDLogger tags the request logger with chi's request id.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimiddleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
