package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is the gitver release, set at build time via ldflags.
	Version = "dev"
	// Commit is the short git SHA the binary was built from.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print gitver build information.",
		Args:              cobra.NoArgs,
		PersistentPreRunE: skipConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "gitver %s (commit: %s, built at: %s)\n", Version, Commit, BuildTime)
		},
	}
}

// skipConfig replaces the root hook for commands that need no configuration.
func skipConfig(*cobra.Command, []string) error {
	return nil
}
