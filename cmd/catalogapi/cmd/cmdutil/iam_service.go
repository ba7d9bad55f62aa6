package cmdutil

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/config"
	"github.com/librarydirecto/catalogapi/internal/db/bunx"
	"github.com/librarydirecto/catalogapi/internal/repository"
	"github.com/librarydirecto/catalogapi/internal/services/iam"
)

// IAMServiceBundle bundles the service with its underlying DB connection so
// callers can reuse the connection for other repositories.
type IAMServiceBundle struct {
	Service *iam.Service
	DB      *bun.DB
}

// Close releases the underlying database connection.
func (b *IAMServiceBundle) Close() {
	if b == nil || b.DB == nil {
		return
	}
	bunx.Close(b.DB)
}

// NewIAMServiceBundle centralizes IAM service construction for CLI commands.
// CLI commands never issue bearer tokens, so a random signing key stands in
// when jwt.secret is unset.
func NewIAMServiceBundle(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*IAMServiceBundle, error) {
	secret := []byte(cfg.JWT.Secret)
	if len(secret) == 0 {
		var err error
		if secret, err = auth.GenerateKey(32); err != nil {
			return nil, err
		}
	}
	tokens, err := auth.NewTokenCodec(secret, auth.WithTokenTTL(cfg.JWT.TTL))
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	db, err := bunx.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	service, err := iam.NewService(iam.Dependencies{
		Users:  repository.NewBunUserRepository(db),
		Tokens: tokens,
		Logger: logger,
	})
	if err != nil {
		bunx.Close(db)
		return nil, fmt.Errorf("failed to initialize IAM service: %w", err)
	}

	return &IAMServiceBundle{Service: service, DB: db}, nil
}
