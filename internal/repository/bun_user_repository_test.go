package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBunUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Email:      "ana@example.com",
		Name:       strPtr("Ana"),
		AuthSource: models.AuthSourceFederated,
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	t.Run("by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, models.RoleUser, got.Role)
		assert.Equal(t, models.AuthSourceFederated, got.AuthSource)
		assert.Nil(t, got.PasswordHash)
		assert.NotZero(t, got.CreatedAt)
	})

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", got.Email)
	})

	t.Run("email is case sensitive", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "ANA@example.com")
		assert.ErrorIs(t, err, ErrIdentityNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrIdentityNotFound)
	})
}

func TestBunUserRepository_CreateDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "dup@example.com", AuthSource: models.AuthSourceFederated}))

	err := repo.Create(ctx, &models.User{Email: "dup@example.com", AuthSource: models.AuthSourceLocal, PasswordHash: strPtr("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateIdentity), "unexpected error: %v", err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestBunUserRepository_Exists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		Email:        "boss@example.com",
		Role:         models.RoleAdmin,
		AuthSource:   models.AuthSourceLocal,
		PasswordHash: strPtr("hash"),
	}))

	exists, err := repo.ExistsByEmail(ctx, "boss@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	hasAdmin, err := repo.ExistsByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, hasAdmin)

	hasLibrarian, err := repo.ExistsByRole(ctx, models.RoleLibrarian)
	require.NoError(t, err)
	assert.False(t, hasLibrarian)
}

func TestBunUserRepository_CreateFirstAdmin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	const callers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.CreateFirstAdmin(ctx, &models.User{
				Email:        fmt.Sprintf("admin-%d@example.com", i),
				AuthSource:   models.AuthSourceLocal,
				PasswordHash: strPtr("hash"),
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrAdminExists)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Role)

	t.Run("closed once an admin exists", func(t *testing.T) {
		err := repo.CreateFirstAdmin(ctx, &models.User{
			Email:        "late@example.com",
			AuthSource:   models.AuthSourceLocal,
			PasswordHash: strPtr("hash"),
		})
		assert.ErrorIs(t, err, ErrAdminExists)
	})
}

func TestBunUserRepository_UpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Email:        "staff@example.com",
		Name:         strPtr("Old Name"),
		Role:         models.RoleLibrarian,
		AuthSource:   models.AuthSourceLocal,
		PasswordHash: strPtr("bcrypt-hash"),
	}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.UpdateProfile(ctx, user.ID, strPtr("New Name"), strPtr("https://img.example.com/a.png")))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", *got.Name)
	assert.Equal(t, "https://img.example.com/a.png", *got.Picture)
	assert.Equal(t, models.RoleLibrarian, got.Role)
	assert.Equal(t, models.AuthSourceLocal, got.AuthSource)
	require.NotNil(t, got.PasswordHash)
	assert.Equal(t, "bcrypt-hash", *got.PasswordHash)

	err = repo.UpdateProfile(ctx, 4242, nil, nil)
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.True(t, IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
}
