package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chelly1221/shift-calendar-sub001/internal/calendar"
	"github.com/chelly1221/shift-calendar-sub001/internal/google"
	"github.com/chelly1221/shift-calendar-sub001/internal/logging"
	"github.com/chelly1221/shift-calendar-sub001/internal/store"
)

// rootCmd represents the base command for the shiftcal application
var rootCmd = &cobra.Command{
	Use:   "shiftcal",
	Short: "Keeps a shift calendar in sync with Google Calendar",
	Long: `shiftcal pulls remote changes from a Google calendar and pushes local
shift edits back, tracking general duty, leave (휴가) and holiday (휴일)
entries through a private event-type marker on each event.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	logging.Setup()

	rootCmd.SetVersionTemplate(`{{printf "shiftcal version %s\n" .Version}}`)

	// If no subcommand is provided, show the connection status by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "status")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(newDisconnectCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newHolidaysCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shiftcal version %s\n", version)
		},
	}
}

// newManager wires the token lifecycle manager to the file-backed stores.
func newManager() (*google.Manager, store.Settings, error) {
	settings, err := store.NewFileSettings()
	if err != nil {
		return nil, nil, err
	}
	credentials, err := store.NewFileCredentialStore()
	if err != nil {
		return nil, nil, err
	}
	return google.NewManager(settings, credentials, nil), settings, nil
}

// newCalendarClient builds an authorized calendar client for the given
// calendar id, falling back to the persisted selection and then to the
// primary calendar.
func newCalendarClient(ctx context.Context, calendarID string) (*calendar.Client, error) {
	manager, settings, err := newManager()
	if err != nil {
		return nil, err
	}

	if calendarID == "" {
		calendarID, err = settings.Get(store.KeySelectedCalendar)
		if err != nil {
			return nil, err
		}
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	httpClient, err := manager.AuthorizedClient(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.NewClient(ctx, httpClient, calendarID, nil)
}
