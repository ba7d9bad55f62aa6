package iam

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for any unknown email or bad password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidStaffRole is returned when registering staff with a non-staff role
	ErrInvalidStaffRole = errors.New("staff role must be LIBRARIAN or ADMIN")

	// ErrBootstrapRequiresAdmin is returned when an unprivileged caller registers a non-ADMIN while no ADMIN exists
	ErrBootstrapRequiresAdmin = errors.New("the first staff identity must be an ADMIN")

	// ErrBootstrapClosed is returned when an anonymous registration loses to an existing ADMIN
	ErrBootstrapClosed = errors.New("staff registration requires authentication")

	// ErrAdminRequired is returned when a non-ADMIN registration loses to an existing ADMIN
	ErrAdminRequired = errors.New("staff registration requires the ADMIN role")

	// ErrNoPrincipal is returned when the context carries no authenticated identity
	ErrNoPrincipal = errors.New("request is not authenticated")
)
