package staff

import (
	"bufio"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/librarydirecto/catalogapi/cmd/catalogapi/cmd/cmdutil"
	"github.com/librarydirecto/catalogapi/internal/config"
	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/logging"
	"github.com/librarydirecto/catalogapi/internal/repository"
	"github.com/librarydirecto/catalogapi/internal/services/iam"
)

// minPasswordLength matches the login payload validation.
const minPasswordLength = 8

var (
	emailFlag    string
	nameFlag     string
	passwordFlag string
	roleFlag     string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new staff identity",
	Long: `Creates a LIBRARIAN or ADMIN identity with a local password. Use it to
seed the first administrator without going through the HTTP bootstrap.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if _, err := mail.ParseAddress(emailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}

		role := models.Role(strings.ToUpper(roleFlag))
		if !role.IsStaff() {
			return fmt.Errorf("invalid role %q: valid roles are LIBRARIAN, ADMIN", roleFlag)
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}
		if len(password) < minPasswordLength {
			return fmt.Errorf("password must be at least %d characters", minPasswordLength)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := logging.New(cfg.Debug)

		bundle, err := cmdutil.NewIAMServiceBundle(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer bundle.Close()

		user, err := bundle.Service.ProvisionStaff(cmd.Context(), iam.StaffRegistration{
			Email:    emailFlag,
			Password: password,
			Name:     nameFlag,
			Role:     role,
		})
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			return fmt.Errorf("identity with email %q already exists", emailFlag)
		}
		if err != nil {
			return fmt.Errorf("failed to create staff identity: %w", err)
		}

		fmt.Printf("Staff identity created successfully\n")
		fmt.Printf("  ID:    %d\n", user.ID)
		fmt.Printf("  Email: %s\n", user.Email)
		fmt.Printf("  Role:  %s\n", user.Role)
		return nil
	},
}
