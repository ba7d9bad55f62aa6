package iam

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/repository"
)

type mockUserRepository struct {
	mu     sync.Mutex
	users  map[string]*models.User // email → user
	nextID int64

	creates        int
	profileUpdates int
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[string]*models.User{}}
	for _, u := range users {
		m.nextID++
		u.ID = m.nextID
		m.users[u.Email] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return fmt.Errorf("create user %s: %w", user.Email, repository.ErrDuplicateIdentity)
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.Email] = &stored
	m.creates++
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", id, repository.ErrIdentityNotFound)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, fmt.Errorf("user with email %s: %w", email, repository.ErrIdentityNotFound)
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[email]
	return ok, nil
}

func (m *mockUserRepository) ExistsByRole(ctx context.Context, role models.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) CreateFirstAdmin(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == models.RoleAdmin {
			return repository.ErrAdminExists
		}
	}
	if _, ok := m.users[user.Email]; ok {
		return fmt.Errorf("create user %s: %w", user.Email, repository.ErrDuplicateIdentity)
	}
	user.Role = models.RoleAdmin
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.Email] = &stored
	m.creates++
	return nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id int64, name, picture *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.Name = name
			u.Picture = picture
			m.profileUpdates++
			return nil
		}
	}
	return fmt.Errorf("user %d: %w", id, repository.ErrIdentityNotFound)
}

func (m *mockUserRepository) List(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// racingUserRepository reports the email as absent on the first lookup and
// then lets a concurrent writer win the insert.
type racingUserRepository struct {
	*mockUserRepository
	winner  *models.User
	lookups int
}

func (r *racingUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.lookups++
	if r.lookups == 1 {
		winner := *r.winner
		if err := r.mockUserRepository.Create(ctx, &winner); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("user with email %s: %w", email, repository.ErrIdentityNotFound)
	}
	return r.mockUserRepository.GetByEmail(ctx, email)
}

func strPtr(s string) *string { return &s }
