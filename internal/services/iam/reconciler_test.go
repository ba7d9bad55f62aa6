package iam

import (
	"context"
	"sync"
	"testing"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/db/bunx"
	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/migrations"
	"github.com/librarydirecto/catalogapi/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_NewEmail(t *testing.T) {
	users := newMockUserRepository()
	svc := newTestService(t, users)

	user, err := svc.Reconcile(context.Background(), auth.FederatedClaims{
		Email:   "patron@example.com",
		Name:    "Patron",
		Picture: "https://img.example.com/p.png",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.AuthSourceFederated, user.AuthSource)
	assert.Nil(t, user.PasswordHash)
	assert.Equal(t, "Patron", *user.Name)
	assert.Equal(t, "https://img.example.com/p.png", *user.Picture)
	assert.Equal(t, 1, users.count())
}

func TestReconcile_Idempotent(t *testing.T) {
	users := newMockUserRepository()
	svc := newTestService(t, users)
	ctx := context.Background()
	claims := auth.FederatedClaims{Email: "patron@example.com", Name: "Patron", Picture: "https://img/p.png"}

	first, err := svc.Reconcile(ctx, claims)
	require.NoError(t, err)
	second, err := svc.Reconcile(ctx, claims)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, users.count())
	assert.Equal(t, 1, users.creates)

	stored, err := users.GetByEmail(ctx, "patron@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Patron", *stored.Name)
	assert.Equal(t, models.RoleUser, stored.Role)
}

func TestReconcile_UpdatesProfileOnly(t *testing.T) {
	users := newMockUserRepository()
	svc := newTestService(t, users)
	ctx := context.Background()

	_, err := svc.Reconcile(ctx, auth.FederatedClaims{Email: "patron@example.com", Name: "Old", Picture: "https://img/old.png"})
	require.NoError(t, err)

	updated, err := svc.Reconcile(ctx, auth.FederatedClaims{Email: "patron@example.com", Name: "New", Picture: ""})
	require.NoError(t, err)
	assert.Equal(t, "New", *updated.Name)
	assert.Nil(t, updated.Picture)
	assert.Equal(t, 1, users.profileUpdates)
}

func TestReconcile_LocalIdentityKeepsRoleAndCredential(t *testing.T) {
	hash := "$2a$04$existinghash"
	users := newMockUserRepository(&models.User{
		Email:        "lib@example.com",
		Name:         strPtr("Local Name"),
		PasswordHash: &hash,
		Role:         models.RoleLibrarian,
		AuthSource:   models.AuthSourceLocal,
	})
	svc := newTestService(t, users)
	ctx := context.Background()

	user, err := svc.Reconcile(ctx, auth.FederatedClaims{Email: "lib@example.com", Name: "Google Name", Picture: "https://img/g.png"})
	require.NoError(t, err)

	stored, err := users.GetByEmail(ctx, "lib@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.Equal(t, models.RoleLibrarian, stored.Role)
	assert.Equal(t, models.AuthSourceLocal, stored.AuthSource)
	require.NotNil(t, stored.PasswordHash)
	assert.Equal(t, hash, *stored.PasswordHash)
	assert.Equal(t, "Google Name", *stored.Name)
	assert.Equal(t, "https://img/g.png", *stored.Picture)
}

func TestReconcile_MissingEmail(t *testing.T) {
	svc := newTestService(t, newMockUserRepository())
	_, err := svc.Reconcile(context.Background(), auth.FederatedClaims{Name: "No Email"})
	assert.ErrorIs(t, err, auth.ErrMissingEmailClaim)
}

func TestReconcile_LostInsertRetriedAsUpdate(t *testing.T) {
	users := &racingUserRepository{
		mockUserRepository: newMockUserRepository(),
		winner: &models.User{
			Email:      "race@example.com",
			Name:       strPtr("Winner"),
			Role:       models.RoleUser,
			AuthSource: models.AuthSourceFederated,
		},
	}
	svc, err := NewService(Dependencies{Users: users, Tokens: newTestCodec(t, nil), Logger: zerolog.Nop()})
	require.NoError(t, err)

	user, err := svc.Reconcile(context.Background(), auth.FederatedClaims{Email: "race@example.com", Name: "Loser"})
	require.NoError(t, err)

	assert.Equal(t, 1, users.count())
	assert.Equal(t, "Loser", *user.Name)
	assert.Equal(t, models.AuthSourceFederated, user.AuthSource)
	assert.Equal(t, 1, users.profileUpdates)
}

func TestReconcile_ConcurrentLoginsCreateOneIdentity(t *testing.T) {
	ctx := context.Background()
	db, err := bunx.NewDB(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })
	require.NoError(t, migrations.Apply(ctx, db))

	users := repository.NewBunUserRepository(db)
	svc, err := NewService(Dependencies{Users: users, Tokens: newTestCodec(t, nil), Logger: zerolog.Nop()})
	require.NoError(t, err)

	const logins = 16
	ids := make([]int64, logins)
	errs := make([]error, logins)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			user, err := svc.Reconcile(ctx, auth.FederatedClaims{Email: "crowd@example.com", Name: "Crowd"})
			errs[i] = err
			if user != nil {
				ids[i] = user.ID
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < logins; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, models.RoleUser, all[0].Role)
}
