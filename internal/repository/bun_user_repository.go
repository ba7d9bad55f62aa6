package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BunUserRepository implements UserRepository using Bun ORM
type BunUserRepository struct {
	db *bun.DB
}

// NewBunUserRepository creates a new Bun-based user repository
func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return &BunUserRepository{db: db}
}

// Create inserts a new user into the database
func (r *BunUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	_, err := r.db.NewInsert().
		Model(user).
		Exec(ctx)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", user.Email, ErrDuplicateIdentity)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *BunUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrIdentityNotFound)
		}
		return nil, fmt.Errorf("get user by ID: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email address
func (r *BunUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrIdentityNotFound)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// ExistsByEmail reports whether an identity with the email is stored
func (r *BunUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ?", email).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return exists, nil
}

// ExistsByRole reports whether at least one identity holds the role
func (r *BunUserRepository) ExistsByRole(ctx context.Context, role models.Role) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.User)(nil)).
		Where("role = ?", role).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check user role: %w", err)
	}
	return exists, nil
}

// CreateFirstAdmin inserts user as the first ADMIN. On PostgreSQL the users
// table is locked against concurrent writers for the transaction; SQLite
// transactions are already serialised by the single pooled connection.
func (r *BunUserRepository) CreateFirstAdmin(ctx context.Context, user *models.User) error {
	user.Role = models.RoleAdmin
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if r.db.Dialect().Name() == dialect.PG {
			if _, err := tx.ExecContext(ctx, "LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE"); err != nil {
				return fmt.Errorf("lock users table: %w", err)
			}
		}

		exists, err := tx.NewSelect().
			Model((*models.User)(nil)).
			Where("role = ?", models.RoleAdmin).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check admin exists: %w", err)
		}
		if exists {
			return ErrAdminExists
		}

		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			if IsUniqueViolation(err) {
				return fmt.Errorf("create user %s: %w", user.Email, ErrDuplicateIdentity)
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}

// UpdateProfile overwrites name and picture. Role, auth source and password
// hash are never part of the statement.
func (r *BunUserRepository) UpdateProfile(ctx context.Context, id int64, name, picture *string) error {
	user := &models.User{
		ID:        id,
		Name:      name,
		Picture:   picture,
		UpdatedAt: time.Now().UTC(),
	}

	result, err := r.db.NewUpdate().
		Model(user).
		Column("name", "picture", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %d: %w", id, ErrIdentityNotFound)
	}
	return nil
}

// List returns every user ordered by id
func (r *BunUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.NewSelect().Model(&users).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
