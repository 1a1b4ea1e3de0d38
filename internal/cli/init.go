package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"simcheck/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the workspace and default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "simcheck workspace ready at: %s\n", root)
		fmt.Fprintf(out, "Settings: %s\n", workspace.SettingsPath(root))
		return nil
	},
}
