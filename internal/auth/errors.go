package auth

import "errors"

var (
	// ErrInvalidToken covers malformed, unverifiable and expired bearer tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrSigningSecretMissing is returned when no signing secret is configured
	ErrSigningSecretMissing = errors.New("token signing secret is not configured")

	// ErrSigningSecretTooShort is returned when the signing secret is under MinSecretLength bytes
	ErrSigningSecretTooShort = errors.New("token signing secret is too short")

	// ErrMissingEmailClaim is returned when the identity provider supplies no email
	ErrMissingEmailClaim = errors.New("identity provider returned no email claim")
)
