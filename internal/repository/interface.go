package repository

import (
	"context"

	"github.com/librarydirecto/catalogapi/internal/db/models"
)

// UserRepository exposes persistence operations for identities.
type UserRepository interface {
	// Create inserts a new identity. A taken email yields ErrDuplicateIdentity.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByRole(ctx context.Context, role models.Role) (bool, error)
	// CreateFirstAdmin inserts an ADMIN identity only while no ADMIN is
	// stored. The check and the insert are one atomic step; a lost race
	// yields ErrAdminExists.
	CreateFirstAdmin(ctx context.Context, user *models.User) error
	// UpdateProfile overwrites only the display attributes of an identity.
	UpdateProfile(ctx context.Context, id int64, name, picture *string) error
	List(ctx context.Context) ([]models.User, error)
}

// CategoryRepository exposes persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
}

// BookRepository exposes persistence operations for books. Reads load the
// category and creator relations.
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}
