package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const keyringService = "deskcli"
const keyringUser = "server-api-token"

// serverAPIToken returns the stored token, or empty when none exists.
func serverAPIToken() string {
	token, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		return ""
	}
	return token
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Commands for managing the API token that protects the deskcli server.`,
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Display the server API token, generating one if needed",
	Long:  `Displays the API token used to authenticate against the deskcli server. A new token is generated and stored in the system keyring on first use.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := keyring.Get(keyringService, keyringUser)
		if err == nil {
			fmt.Println(token)
			return nil
		}

		token = uuid.NewString()
		if err := keyring.Set(keyringService, keyringUser, token); err != nil {
			return fmt.Errorf("failed to store API token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored server API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keyring.Delete(keyringService, keyringUser); err != nil {
			fmt.Println("no API token stored")
			return nil
		}

		fmt.Println("API token removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authTokenCmd, authClearCmd)
}
