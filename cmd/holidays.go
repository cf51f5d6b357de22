package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHolidaysCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List Korean public holidays for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newCalendarClient(ctx, "primary")
			if err != nil {
				return err
			}

			from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
			to := from.AddDate(1, 0, 0)

			holidays, err := client.PullHolidays(ctx, from, to)
			if err != nil {
				return fmt.Errorf("failed to fetch holidays: %w", err)
			}

			for _, h := range holidays {
				fmt.Printf("%s  %s\n", h.StartUTC.Format("2006-01-02"), h.Summary)
			}
			fmt.Printf("%d holidays in %d\n", len(holidays), year)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Year to list holidays for")
	return cmd
}
