package repository

import (
	"context"
	"testing"

	"github.com/librarydirecto/catalogapi/internal/db/bunx"
	"github.com/librarydirecto/catalogapi/internal/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// setupTestDB opens a private in-memory SQLite database with the full schema applied
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := bunx.NewDB(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	require.NoError(t, migrations.Apply(ctx, db))
	return db
}

func strPtr(s string) *string { return &s }
