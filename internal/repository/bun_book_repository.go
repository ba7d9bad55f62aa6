package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunBookRepository implements BookRepository using Bun ORM
type BunBookRepository struct {
	db *bun.DB
}

// NewBunBookRepository creates a new Bun-based book repository
func NewBunBookRepository(db *bun.DB) *BunBookRepository {
	return &BunBookRepository{db: db}
}

func (r *BunBookRepository) withRelations(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Category").Relation("CreatedBy")
}

func (r *BunBookRepository) Create(ctx context.Context, book *models.Book) error {
	if _, err := r.db.NewInsert().Model(book).Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("create book %s: %w", book.ISBN, ErrDuplicateISBN)
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *BunBookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	book := new(models.Book)
	err := r.withRelations(r.db.NewSelect().Model(book)).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", id, ErrBookNotFound)
		}
		return nil, fmt.Errorf("get book by ID: %w", err)
	}
	return book, nil
}

func (r *BunBookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	book := new(models.Book)
	err := r.withRelations(r.db.NewSelect().Model(book)).
		Where("b.isbn = ?", isbn).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("book with isbn %s: %w", isbn, ErrBookNotFound)
		}
		return nil, fmt.Errorf("get book by isbn: %w", err)
	}
	return book, nil
}

func (r *BunBookRepository) List(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := r.withRelations(r.db.NewSelect().Model(&books)).Order("b.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Update writes the editable columns. Creator, creation time and available
// copies are left as stored.
func (r *BunBookRepository) Update(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now().UTC()

	result, err := r.db.NewUpdate().
		Model(book).
		Column("isbn", "title", "author", "publisher", "publication_year",
			"description", "cover_image", "total_copies", "category_id", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("update book %s: %w", book.ISBN, ErrDuplicateISBN)
		}
		return fmt.Errorf("update book: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("book %d: %w", book.ID, ErrBookNotFound)
	}
	return nil
}

func (r *BunBookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("book %d: %w", id, ErrBookNotFound)
	}
	return nil
}

func (r *BunBookRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("category_id = ?", categoryID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count books by category: %w", err)
	}
	return count, nil
}
