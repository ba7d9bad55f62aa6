package auth

import (
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"time"

	httphelper "github.com/zitadel/oidc/v3/pkg/http"
)

// SessionCookieName carries the email of a federated login.
const SessionCookieName = "catalog.session"

// SessionCookies signs and encrypts the federated session cookie. The same
// handler backs the state and PKCE cookies of the relying party.
type SessionCookies struct {
	handler *httphelper.CookieHandler
}

// NewSessionCookies creates the cookie handler. hashKey authenticates the
// value and blockKey (16, 24 or 32 bytes) encrypts it. maxAge bounds both
// the browser cookie and the signed timestamp.
func NewSessionCookies(hashKey, blockKey []byte, maxAge time.Duration, secure bool) *SessionCookies {
	opts := []httphelper.CookieHandlerOpt{
		httphelper.WithMaxAge(int(maxAge.Seconds())),
		httphelper.WithSameSite(http.SameSiteLaxMode),
	}
	if !secure {
		opts = append(opts, httphelper.WithUnsecure())
	}
	return &SessionCookies{handler: httphelper.NewCookieHandler(hashKey, blockKey, opts...)}
}

// Handler exposes the underlying cookie handler.
func (s *SessionCookies) Handler() *httphelper.CookieHandler {
	return s.handler
}

// Issue sets the session cookie for email.
func (s *SessionCookies) Issue(w http.ResponseWriter, email string) error {
	if err := s.handler.SetCookie(w, SessionCookieName, email); err != nil {
		return fmt.Errorf("set session cookie: %w", err)
	}
	return nil
}

// Email returns the email carried by a valid session cookie.
func (s *SessionCookies) Email(r *http.Request) (string, error) {
	email, err := s.handler.CheckCookie(r, SessionCookieName)
	if err != nil {
		return "", fmt.Errorf("read session cookie: %w", err)
	}
	return email, nil
}

// Clear expires the session cookie.
func (s *SessionCookies) Clear(w http.ResponseWriter) {
	s.handler.DeleteCookie(w, SessionCookieName)
}

// sessionKeySize is the length of generated hash and block keys.
const sessionKeySize = 32

// FillSessionKeys returns the configured keys, generating only the ones that
// are empty. A configured key is never replaced.
func FillSessionKeys(hashKey, blockKey []byte) ([]byte, []byte, error) {
	var err error
	if len(hashKey) == 0 {
		if hashKey, err = GenerateKey(sessionKeySize); err != nil {
			return nil, nil, err
		}
	}
	if len(blockKey) == 0 {
		if blockKey, err = GenerateKey(sessionKeySize); err != nil {
			return nil, nil, err
		}
	}
	return hashKey, blockKey, nil
}

// GenerateKey returns size random bytes, used when no cookie key is configured.
func GenerateKey(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
