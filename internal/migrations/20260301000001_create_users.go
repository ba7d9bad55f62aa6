package migrations

import (
	"context"
	"fmt"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260301000001, down_20260301000001)
}

// up_20260301000001 creates the users table. The unique email index is what
// serialises concurrent federated logins for the same address.
func up_20260301000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating users table...")

	if _, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*models.User)(nil)).
		Index("idx_users_email").
		Unique().
		Column("email").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	fmt.Println(" OK")
	return nil
}

// down_20260301000001 drops the users table
func down_20260301000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping users table...")

	if _, err := db.NewDropTable().
		Model((*models.User)(nil)).
		IfExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to drop users table: %w", err)
	}

	fmt.Println(" OK")
	return nil
}
