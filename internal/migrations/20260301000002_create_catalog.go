package migrations

import (
	"context"
	"fmt"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260301000002, down_20260301000002)
}

// up_20260301000002 creates the categories and books tables
func up_20260301000002(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating catalog tables...")

	if _, err := db.NewCreateTable().
		Model((*models.Category)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create categories table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Book)(nil)).
		IfNotExists().
		ForeignKey(`("category_id") REFERENCES "categories" ("id") ON DELETE RESTRICT`).
		ForeignKey(`("created_by") REFERENCES "users" ("id") ON DELETE SET NULL`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create books table: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*models.Book)(nil)).
		Index("idx_books_category_id").
		Column("category_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create books category index: %w", err)
	}

	fmt.Println(" OK")
	return nil
}

// down_20260301000002 drops the catalog tables
func down_20260301000002(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping catalog tables...")

	for _, model := range []any{(*models.Book)(nil), (*models.Category)(nil)} {
		if _, err := db.NewDropTable().
			Model(model).
			IfExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop catalog table: %w", err)
		}
	}

	fmt.Println(" OK")
	return nil
}
