package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chelly1221/shift-calendar-sub001/internal/store"
)

func newCalendarsCmd() *cobra.Command {
	var selectID string

	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List writable calendars and pick the sync target",
		Long: `List the calendars the connected account can write to. With --select,
persist one of them as the calendar all other commands operate on.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// The listing always runs against the primary calendar's client;
			// the calendar id only scopes event calls.
			client, err := newCalendarClient(ctx, "primary")
			if err != nil {
				return err
			}

			calendars, err := client.ListCalendars(ctx)
			if err != nil {
				return err
			}

			if selectID != "" {
				found := false
				for _, c := range calendars {
					if c.ID == selectID {
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("calendar %q is not writable by the connected account", selectID)
				}

				_, settings, err := newManager()
				if err != nil {
					return err
				}
				if err := settings.Set(store.KeySelectedCalendar, selectID); err != nil {
					return fmt.Errorf("failed to persist calendar selection: %w", err)
				}
				fmt.Printf("Selected calendar %s\n", selectID)
				return nil
			}

			for _, c := range calendars {
				marker := " "
				if c.Primary {
					marker = "*"
				}
				fmt.Printf("%s %-40s %s (%s)\n", marker, c.ID, c.DisplayName, c.AccessRole)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&selectID, "select", "", "Calendar id to persist as the sync target")
	return cmd
}
