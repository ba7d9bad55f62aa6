package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/config"
	"github.com/librarydirecto/catalogapi/internal/db/bunx"
	"github.com/librarydirecto/catalogapi/internal/migrations"
	"github.com/librarydirecto/catalogapi/internal/repository"
	"github.com/librarydirecto/catalogapi/internal/server"
	"github.com/librarydirecto/catalogapi/internal/services/catalog"
	"github.com/librarydirecto/catalogapi/internal/services/iam"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog API server",
	Long:  `Starts the HTTP server with the catalog REST endpoints and the login flows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// The signing secret is mandatory; refuse to start without it.
		tokens, err := auth.NewTokenCodec([]byte(cfg.JWT.Secret), auth.WithTokenTTL(cfg.JWT.TTL))
		if err != nil {
			return fmt.Errorf("bearer token signing (set CATALOG_JWT_SECRET): %w", err)
		}

		db, err := bunx.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)
		logger.Info().Str("database", string(bunx.DetectDatabaseType(cfg.DatabaseURL))).Msg("connected to database")

		if migrateOnStart {
			if err := migrations.Apply(ctx, db); err != nil {
				return fmt.Errorf("migrate on start: %w", err)
			}
			logger.Info().Msg("migrations applied")
		}

		userRepo := repository.NewBunUserRepository(db)
		categoryRepo := repository.NewBunCategoryRepository(db)
		bookRepo := repository.NewBunBookRepository(db)

		iamService, err := iam.NewService(iam.Dependencies{Users: userRepo, Tokens: tokens, Logger: logger})
		if err != nil {
			return fmt.Errorf("create IAM service: %w", err)
		}

		policy, err := auth.NewPolicy(auth.DefaultPolicyTable, auth.WithBootstrapCheck(iamService.BootstrapOpen))
		if err != nil {
			return fmt.Errorf("build access policy: %w", err)
		}

		cookies, err := sessionCookies(cfg)
		if err != nil {
			return err
		}

		var provider *auth.FederatedProvider
		if cfg.OIDC.Enabled() {
			provider, err = auth.NewFederatedProvider(ctx, cfg.OIDC, cookies)
			if err != nil {
				return fmt.Errorf("failed to create federated provider: %w", err)
			}
			logger.Info().Str("issuer", cfg.OIDC.Issuer).Msg("federated login enabled")
		} else {
			logger.Warn().Msg("federated login disabled: oidc.client_id not set")
		}

		router, err := server.NewRouter(server.RouterOptions{
			IAM:        iamService,
			Books:      catalog.NewBookService(bookRepo, categoryRepo, logger),
			Categories: catalog.NewCategoryService(categoryRepo, bookRepo, logger),
			Policy:     policy,
			Cookies:    cookies,
			Provider:   provider,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("build router: %w", err)
		}

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.ServerAddr).Str("url", cfg.ServerURL).Msg("starting server")
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			logger.Info().Msg("server stopped")
			return nil
		}
	},
}

// sessionCookies builds the federated session cookie handler. A missing key
// is generated, which invalidates every session on restart.
func sessionCookies(cfg *config.Config) (*auth.SessionCookies, error) {
	if cfg.Session.HashKey == "" {
		logger.Warn().Msg("session.hash_key not configured, generating an ephemeral key")
	}
	if cfg.Session.BlockKey == "" {
		logger.Warn().Msg("session.block_key not configured, generating an ephemeral key")
	}

	hashKey, blockKey, err := auth.FillSessionKeys([]byte(cfg.Session.HashKey), []byte(cfg.Session.BlockKey))
	if err != nil {
		return nil, fmt.Errorf("session keys: %w", err)
	}

	secure := strings.HasPrefix(cfg.ServerURL, "https://")
	return auth.NewSessionCookies(hashKey, blockKey, cfg.JWT.TTL, secure), nil
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
