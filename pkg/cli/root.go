package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code
func Execute() int {
	rootCmd := NewRootCommand(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCommand builds the cadmdt command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cadmdt",
		Short:         "CAD/MDT access control service",
		Long:          "Serves permission checks and guarded pages for CAD/MDT servers.",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newRoutesCmd(),
		newTokenCmd(),
		newCheckCmd(),
		newAuditCmd(),
	)
	return rootCmd
}
