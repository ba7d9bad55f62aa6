package repository

import (
	"errors"
	"strings"

	"github.com/uptrace/bun/driver/pgdriver"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrIdentityNotFound is returned when no identity matches the lookup key
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrDuplicateIdentity is returned when creating an identity whose email already exists
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrAdminExists is returned by CreateFirstAdmin once an ADMIN identity is stored
	ErrAdminExists = errors.New("an administrator already exists")

	// ErrBookNotFound is returned when no book matches the lookup key
	ErrBookNotFound = errors.New("book not found")

	// ErrDuplicateISBN is returned when another book already carries the ISBN
	ErrDuplicateISBN = errors.New("book with this isbn already exists")

	// ErrCategoryNotFound is returned when no category matches the lookup key
	ErrCategoryNotFound = errors.New("category not found")

	// ErrDuplicateCategoryName is returned when another category already carries the name
	ErrDuplicateCategoryName = errors.New("category with this name already exists")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err was raised by a unique constraint in
// either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	// Extended result codes are not always enabled on the sqlite connection.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
