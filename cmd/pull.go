package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/chelly1221/shift-calendar-sub001/internal/calendar"
	"github.com/chelly1221/shift-calendar-sub001/internal/event"
	"github.com/chelly1221/shift-calendar-sub001/internal/logging"
)

// Default full-pull window around now when neither a sync token nor an
// explicit range is given.
const (
	defaultPullLookback = 30 * 24 * time.Hour
	defaultPullHorizon  = 180 * 24 * time.Hour
)

func newPullCmd() *cobra.Command {
	var (
		calendarID  string
		syncToken   string
		fromFlag    string
		toFlag      string
		schedule    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull remote changes once or on a cron schedule",
		Long: `Pull remote event changes from the sync calendar. With --sync-token the
pull is incremental; otherwise a time range is used (--from/--to, or a
default window around today). The next sync token is printed after a
complete pass so it can be passed to the next incremental pull.

With --schedule, the pull repeats on the given cron expression until
interrupted; each pass continues incrementally from the sync token the
previous pass produced. --metrics-addr additionally serves Prometheus
counters while the schedule runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseTimeFlag(fromFlag)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			to, err := parseTimeFlag(toFlag)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}

			if schedule == "" {
				_, err := runPull(cmd.Context(), calendarID, syncToken, from, to)
				return err
			}

			if metricsAddr != "" {
				go func() {
					if err := http.ListenAndServe(metricsAddr, metricsHandler()); err != nil && err != http.ErrServerClosed {
						slog.Error("metrics listener failed", logging.Err(err))
					}
				}()
			}

			// Skip a trigger while the previous pull is still running, so
			// the token chain below never races.
			c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
			token := syncToken
			_, err = c.AddFunc(schedule, func() {
				next, err := runPull(context.Background(), calendarID, token, from, to)
				if err != nil {
					slog.Error("scheduled pull failed", logging.Err(err))
					return
				}
				token, from, to = nextPullArgs(token, next, from, to)
			})
			if err != nil {
				return fmt.Errorf("invalid --schedule: %w", err)
			}

			c.Start()
			fmt.Printf("Pulling on schedule %q, press Ctrl+C to stop\n", schedule)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			<-c.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar id to pull from (default: the selected calendar)")
	cmd.Flags().StringVar(&syncToken, "sync-token", "", "Sync token from a previous pull for incremental mode")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Range start, RFC3339 or YYYY-MM-DD (full mode only)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Range end, RFC3339 or YYYY-MM-DD (full mode only)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron expression for periodic pulls, e.g. '*/15 * * * *'")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for Prometheus metrics, e.g. ':9090' (with --schedule)")
	return cmd
}

func runPull(ctx context.Context, calendarID, syncToken string, from, to time.Time) (string, error) {
	client, err := newCalendarClient(ctx, calendarID)
	if err != nil {
		return "", err
	}

	if syncToken == "" && from.IsZero() && to.IsZero() {
		now := time.Now()
		from = now.Add(-defaultPullLookback)
		to = now.Add(defaultPullHorizon)
	}

	query := calendar.PullQuery{SyncToken: syncToken, TimeMin: from, TimeMax: to}
	total := 0
	for {
		page, err := client.PullPage(ctx, query)
		if err != nil {
			return "", fmt.Errorf("pull failed: %w", err)
		}

		for _, snap := range page.Snapshots {
			printSnapshot(snap)
			total++
		}

		if page.NextPageToken == "" {
			fmt.Printf("Pulled %d events from %s\n", total, client.CalendarID())
			if page.NextSyncToken != "" {
				fmt.Printf("Next sync token: %s\n", page.NextSyncToken)
			}
			return page.NextSyncToken, nil
		}
		query.PageToken = page.NextPageToken
	}
}

// nextPullArgs chains one pull pass into the next. Once a pass yields a sync
// token, later passes are incremental and the explicit range is dropped; a
// pass without a token (range mode mid-pagination never reaches one) keeps
// the previous arguments.
func nextPullArgs(token, next string, from, to time.Time) (string, time.Time, time.Time) {
	if next == "" {
		return token, from, to
	}
	return next, time.Time{}, time.Time{}
}

// metricsHandler serves the default Prometheus registry under /metrics.
func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func printSnapshot(snap *event.Snapshot) {
	if snap.IsDeleted {
		fmt.Printf("  deleted  %s\n", snap.RemoteID)
		return
	}
	fmt.Printf("  %-4s %s  %s\n", snap.EventType, snap.StartUTC.Format("2006-01-02 15:04Z"), snap.Summary)
}

// parseTimeFlag accepts RFC3339 instants and bare dates in the local zone.
func parseTimeFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", value, time.Local)
}
