package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desktop-next/deskcli/commands"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List running applications",
	Long:  `Lists the regular applications currently running, with their process IDs and bundle identifiers`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		response := commands.RunningAppsCommand()
		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appsCmd)
}
