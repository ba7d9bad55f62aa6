package iam

import (
	"testing"
	"time"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestMain(m *testing.M) {
	auth.PasswordCost = bcrypt.MinCost
	m.Run()
}

func newTestCodec(t *testing.T, now func() time.Time) *auth.TokenCodec {
	t.Helper()
	opts := []auth.TokenOption{}
	if now != nil {
		opts = append(opts, auth.WithClock(now))
	}
	codec, err := auth.NewTokenCodec(testSecret, opts...)
	require.NoError(t, err)
	return codec
}

func newTestService(t *testing.T, users *mockUserRepository) *Service {
	t.Helper()
	svc, err := NewService(Dependencies{
		Users:  users,
		Tokens: newTestCodec(t, nil),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(Dependencies{Tokens: newTestCodec(t, nil)})
	require.Error(t, err)

	_, err = NewService(Dependencies{Users: newMockUserRepository()})
	require.Error(t, err)
}
