package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chelly1221/shift-calendar-sub001/internal/store"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connection state, account and selected calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, settings, err := newManager()
			if err != nil {
				return err
			}

			if !manager.IsConnected() {
				fmt.Println("Google account: not connected (run 'shiftcal connect')")
				return nil
			}

			email, err := settings.Get(store.KeyAccountEmail)
			if err != nil {
				return err
			}
			if email != "" {
				fmt.Printf("Google account: connected as %s\n", email)
			} else {
				fmt.Println("Google account: connected")
			}

			selected, err := settings.Get(store.KeySelectedCalendar)
			if err != nil {
				return err
			}
			if selected == "" {
				selected = "primary (default)"
			}
			fmt.Printf("Sync calendar:  %s\n", selected)
			return nil
		},
	}
}
