// Package catalog implements the book and category write paths behind the
// REST handlers.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/repository"
	"github.com/rs/zerolog"
)

// CategoryInput carries the editable fields of a category.
type CategoryInput struct {
	Name        string
	Description *string
}

// CategoryService manages categories.
type CategoryService struct {
	categories repository.CategoryRepository
	books      repository.BookRepository
	logger     zerolog.Logger
}

// NewCategoryService constructs a CategoryService. books is consulted before
// a delete so that referenced categories are kept.
func NewCategoryService(categories repository.CategoryRepository, books repository.BookRepository, logger zerolog.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		books:      books,
		logger:     logger.With().Str("component", "categories").Logger(),
	}
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// Get returns one category or an error wrapping repository.ErrCategoryNotFound.
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Create stores a new category. Names are unique.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	category := &models.Category{Name: in.Name, Description: in.Description}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("created category")
	return category, nil
}

// Update overwrites name and description. Renaming onto the name of another
// category fails with repository.ErrDuplicateCategoryName.
func (s *CategoryService) Update(ctx context.Context, id int64, in CategoryInput) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, id); err != nil {
		return nil, err
	}

	category.Name = in.Name
	category.Description = in.Description
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category that no book references.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.books.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("delete category %d (%d books): %w", id, count, ErrCategoryInUse)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("category_id", id).Msg("deleted category")
	return nil
}

// ensureNameFree fails when a category other than self already carries name.
func (s *CategoryService) ensureNameFree(ctx context.Context, name string, self int64) error {
	existing, err := s.categories.GetByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check category name: %w", err)
	case existing.ID != self:
		return fmt.Errorf("category %q: %w", name, repository.ErrDuplicateCategoryName)
	default:
		return nil
	}
}
