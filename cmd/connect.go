package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Run the interactive Google authorization flow",
		Long: `Start a one-time loopback listener and print the Google authorization
URL. Open the URL in a browser, approve access, and the credential is
stored locally for later commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := newManager()
			if err != nil {
				return err
			}

			email, err := manager.ConnectInteractive(cmd.Context(), func(authURL string) {
				fmt.Println("Open the following URL in your browser to authorize access:")
				fmt.Println()
				fmt.Printf("  %s\n", authURL)
				fmt.Println()
			})
			if err != nil {
				return fmt.Errorf("failed to connect Google account: %w", err)
			}

			if email != "" {
				fmt.Printf("Connected as %s\n", email)
			} else {
				fmt.Println("Connected")
			}
			return nil
		},
	}
}
