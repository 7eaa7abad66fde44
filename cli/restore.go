package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desktop-next/deskcli/commands"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore a saved workspace",
	Long:  `Launches the workspace's applications, repositions their windows and reopens Safari tabs and Word documents`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.RestoreWorkspaceRequest{
			Name:        args[0],
			CloseOthers: restoreCloseOthers,
			Prompt:      true,
		}

		response := commands.RestoreWorkspaceCommand(req)
		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolVar(&restoreCloseOthers, "close-others", false, "Close running apps that are not part of the workspace")
}
