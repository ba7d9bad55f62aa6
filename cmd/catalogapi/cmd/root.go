package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/librarydirecto/catalogapi/cmd/catalogapi/cmd/staff"
	"github.com/librarydirecto/catalogapi/internal/config"
	"github.com/librarydirecto/catalogapi/internal/logging"
)

var (
	cfg        *config.Config
	logger     zerolog.Logger
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "catalogapi",
	Short: "Library catalog API server",
	Long: `catalogapi serves the library catalog REST API: books, categories and
the identities allowed to manage them. Patrons sign in through the federated
provider; staff sign in with a password and receive a bearer token.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = logging.New(cfg.Debug)
		return nil
	},
}

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a YAML config file")
	flags.String("db-url", "", "Database connection URL (env: CATALOG_DATABASE_URL)")
	flags.String("server-addr", "", "Server bind address (env: CATALOG_SERVER_ADDR)")
	flags.String("server-url", "", "Public base URL used for redirects (env: CATALOG_SERVER_URL)")
	flags.Bool("debug", false, "Enable debug logging (env: CATALOG_DEBUG)")

	_ = viper.BindPFlag("database_url", flags.Lookup("db-url"))
	_ = viper.BindPFlag("server_addr", flags.Lookup("server-addr"))
	_ = viper.BindPFlag("server_url", flags.Lookup("server-url"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))

	// Add subcommands
	rootCmd.AddCommand(staff.StaffCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
