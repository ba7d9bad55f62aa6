package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunCategoryRepository implements CategoryRepository using Bun ORM
type BunCategoryRepository struct {
	db *bun.DB
}

// NewBunCategoryRepository creates a new Bun-based category repository
func NewBunCategoryRepository(db *bun.DB) *BunCategoryRepository {
	return &BunCategoryRepository{db: db}
}

func (r *BunCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if _, err := r.db.NewInsert().Model(category).Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("create category %q: %w", category.Name, ErrDuplicateCategoryName)
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *BunCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	category := new(models.Category)
	if err := r.db.NewSelect().Model(category).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %d: %w", id, ErrCategoryNotFound)
		}
		return nil, fmt.Errorf("get category by ID: %w", err)
	}
	return category, nil
}

func (r *BunCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	category := new(models.Category)
	if err := r.db.NewSelect().Model(category).Where("name = ?", name).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", name, ErrCategoryNotFound)
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return category, nil
}

func (r *BunCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.NewSelect().Model(&categories).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *BunCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	result, err := r.db.NewUpdate().
		Model(category).
		Column("name", "description").
		WherePK().
		Exec(ctx)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("update category %q: %w", category.Name, ErrDuplicateCategoryName)
		}
		return fmt.Errorf("update category: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("category %d: %w", category.ID, ErrCategoryNotFound)
	}
	return nil
}

func (r *BunCategoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*models.Category)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("category %d: %w", id, ErrCategoryNotFound)
	}
	return nil
}
