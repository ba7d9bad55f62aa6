package catalog

import "errors"

var (
	// ErrCategoryInUse is returned when deleting a category still referenced by books
	ErrCategoryInUse = errors.New("category is referenced by books")

	// ErrInvalidCategory is returned when a book names a category that does not exist
	ErrInvalidCategory = errors.New("category does not exist")

	// ErrInvalidCopies is returned when a book declares a negative number of copies
	ErrInvalidCopies = errors.New("total copies must not be negative")
)
