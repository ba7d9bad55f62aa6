package staff

import "github.com/spf13/cobra"

// StaffCmd is the parent command for staff identity management
var StaffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage locally authenticated staff identities",
	Long:  `Commands for managing librarian and administrator accounts directly from the server.`,
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the staff member")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Display name of the staff member")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (use --stdin to avoid shell history)")
	createCmd.Flags().StringVar(&roleFlag, "role", "ADMIN", "Staff role: LIBRARIAN or ADMIN")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	StaffCmd.AddCommand(createCmd)
}
