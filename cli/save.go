package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desktop-next/deskcli/commands"
)

var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current desktop state as a workspace",
	Long:  `Captures running applications, their window layouts, Safari tabs and open Word documents into a named workspace`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.SaveWorkspaceRequest{
			Name:   args[0],
			Prompt: true,
		}

		response := commands.SaveWorkspaceCommand(req)
		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
}
