package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped by the release build. Source builds report dev.
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ifc2lbd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ifc2lbd "+Version)
		},
	}
}
