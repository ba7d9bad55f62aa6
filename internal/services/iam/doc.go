// Package iam resolves identities for the catalog API.
//
// It owns the two ways an identity reaches a request:
//
//   - BearerAuthenticator: locally issued tokens on the Authorization header
//   - SessionAuthenticator: the signed cookie set after a federated login
//
// and the write paths of the identity store: federated reconciliation
// (upsert by email), staff registration and local credential login.
//
// Request Flow:
//
//	Request → Authenticate middleware → Authenticator.Authenticate() → auth.Principal
//	       ↓
//	   auth.Policy.Decide(principal, operation) → handler
//
// Authenticators never reject a request. A failed or absent credential yields
// no principal and the policy decides what an anonymous caller may do.
package iam
