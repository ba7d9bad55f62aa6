package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/repository"
	"github.com/rs/zerolog"
)

// BookInput carries the editable fields of a book.
type BookInput struct {
	ISBN            string
	Title           string
	Author          string
	Publisher       *string
	PublicationYear *int
	Description     *string
	CoverImage      *string
	TotalCopies     int
	CategoryID      int64
}

// BookService manages the book catalog.
type BookService struct {
	books      repository.BookRepository
	categories repository.CategoryRepository
	logger     zerolog.Logger
}

// NewBookService constructs a BookService.
func NewBookService(books repository.BookRepository, categories repository.CategoryRepository, logger zerolog.Logger) *BookService {
	return &BookService{
		books:      books,
		categories: categories,
		logger:     logger.With().Str("component", "books").Logger(),
	}
}

// List returns every book with its category and creator loaded.
func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	return s.books.List(ctx)
}

// Get returns one book or an error wrapping repository.ErrBookNotFound.
func (s *BookService) Get(ctx context.Context, id int64) (*models.Book, error) {
	return s.books.GetByID(ctx, id)
}

// Create registers a book. All copies start available. createdBy is the
// identity performing the registration and may be nil.
func (s *BookService) Create(ctx context.Context, in BookInput, createdBy *int64) (*models.Book, error) {
	if in.TotalCopies < 0 {
		return nil, ErrInvalidCopies
	}
	if err := s.ensureISBNFree(ctx, in.ISBN, 0); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	book := &models.Book{CreatedByID: createdBy}
	applyInput(book, in)
	book.AvailableCopies = in.TotalCopies

	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("book_id", book.ID).Str("isbn", book.ISBN).Msg("created book")

	return s.books.GetByID(ctx, book.ID)
}

// Update overwrites the editable fields of a book. Available copies and the
// creator are left untouched.
func (s *BookService) Update(ctx context.Context, id int64, in BookInput) (*models.Book, error) {
	if in.TotalCopies < 0 {
		return nil, ErrInvalidCopies
	}
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ensureISBNFree(ctx, in.ISBN, id); err != nil {
		return nil, err
	}

	applyInput(book, in)
	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}

	return s.books.GetByID(ctx, id)
}

// Delete removes a book.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("book_id", id).Msg("deleted book")
	return nil
}

func (s *BookService) ensureCategory(ctx context.Context, id int64) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return fmt.Errorf("category %d: %w", id, ErrInvalidCategory)
		}
		return err
	}
	return nil
}

func (s *BookService) ensureISBNFree(ctx context.Context, isbn string, self int64) error {
	existing, err := s.books.GetByISBN(ctx, isbn)
	switch {
	case errors.Is(err, repository.ErrBookNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check isbn: %w", err)
	case existing.ID != self:
		return fmt.Errorf("isbn %s: %w", isbn, repository.ErrDuplicateISBN)
	default:
		return nil
	}
}

func applyInput(book *models.Book, in BookInput) {
	book.ISBN = in.ISBN
	book.Title = in.Title
	book.Author = in.Author
	book.Publisher = in.Publisher
	book.PublicationYear = in.PublicationYear
	book.Description = in.Description
	book.CoverImage = in.CoverImage
	book.TotalCopies = in.TotalCopies
	book.CategoryID = in.CategoryID
	book.Category = nil
}
