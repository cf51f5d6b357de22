package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Revoke and remove the stored Google credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := newManager()
			if err != nil {
				return err
			}
			if err := manager.Disconnect(cmd.Context()); err != nil {
				return fmt.Errorf("failed to disconnect: %w", err)
			}
			fmt.Println("Disconnected")
			return nil
		},
	}
}
