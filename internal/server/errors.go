package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/librarydirecto/catalogapi/internal/middleware"
	"github.com/librarydirecto/catalogapi/internal/repository"
	"github.com/librarydirecto/catalogapi/internal/services/catalog"
	"github.com/librarydirecto/catalogapi/internal/services/iam"
)

var (
	// ErrInvalidID is returned when a path id is not a positive integer
	ErrInvalidID = errors.New("id must be a positive integer")

	// ErrMalformedBody is returned when a request body is not valid JSON
	ErrMalformedBody = errors.New("malformed request body")
)

// statusFor maps service and repository errors to HTTP statuses. Unknown
// errors are internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrBookNotFound),
		errors.Is(err, repository.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateISBN),
		errors.Is(err, repository.ErrDuplicateCategoryName),
		errors.Is(err, repository.ErrDuplicateIdentity),
		errors.Is(err, catalog.ErrCategoryInUse):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrInvalidCategory),
		errors.Is(err, catalog.ErrInvalidCopies),
		errors.Is(err, iam.ErrInvalidStaffRole),
		errors.Is(err, iam.ErrBootstrapRequiresAdmin),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrMalformedBody):
		return http.StatusBadRequest
	case errors.Is(err, iam.ErrInvalidCredentials),
		errors.Is(err, iam.ErrNoPrincipal),
		errors.Is(err, iam.ErrBootstrapClosed):
		return http.StatusUnauthorized
	case errors.Is(err, iam.ErrAdminRequired):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal errors are logged
// and their detail is withheld from the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		middleware.WriteError(w, status, "Internal error", nil)
		return
	}

	message := err.Error()
	switch {
	case errors.Is(err, iam.ErrInvalidCredentials):
		message = "Invalid credentials"
	case errors.Is(err, repository.ErrDuplicateIdentity):
		message = "Email already registered"
	case errors.Is(err, iam.ErrBootstrapClosed):
		message = "Authentication required"
	case errors.Is(err, iam.ErrAdminRequired):
		message = "Access denied"
	}
	hlog.FromRequest(r).Debug().Err(err).Int("status", status).Msg("request rejected")
	middleware.WriteError(w, status, message, nil)
}

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
// It writes the 400 response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *Validator, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("decode request body")
		respondError(w, r, ErrMalformedBody)
		return false
	}

	details, err := v.Check(dst)
	if err != nil {
		respondError(w, r, err)
		return false
	}
	if len(details) > 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Validation failed", details)
		return false
	}
	return true
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
