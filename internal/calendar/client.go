package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/chelly1221/shift-calendar-sub001/internal/logging"
)

// HolidayCalendarID is the well-known read-only calendar carrying regional
// holidays.
const HolidayCalendarID = "ko.south_korea#holiday@group.v.calendar.google.com"

// Writable access roles for ListCalendars.
const (
	roleOwner  = "owner"
	roleWriter = "writer"
)

// Client wraps the Google Calendar service for one target calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
	logger     *slog.Logger
}

// NewClient creates a Client from an authorized HTTP client, typically
// obtained from google.Manager.AuthorizedClient. Extra options are applied
// after the HTTP client and exist mainly so tests can point the service at a
// fake endpoint.
func NewClient(ctx context.Context, httpClient *http.Client, calendarID string, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	all := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := calendar.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{
		svc:        svc,
		calendarID: calendarID,
		logger:     logging.WithCalendar(logger, calendarID),
	}, nil
}

// CalendarID returns the calendar this client reconciles against.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// ListCalendars enumerates the calendars the authenticated identity can
// write to, primary first and the rest in locale-aware display-name order.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var calendars []CalendarInfo
	pageToken := ""
	for {
		call := c.svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list calendars: %w", err)
		}
		for _, entry := range list.Items {
			if entry.AccessRole != roleOwner && entry.AccessRole != roleWriter {
				continue
			}
			calendars = append(calendars, CalendarInfo{
				ID:          entry.Id,
				DisplayName: entry.Summary,
				Primary:     entry.Primary,
				AccessRole:  entry.AccessRole,
			})
		}
		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	collator := collate.New(language.Korean)
	sort.SliceStable(calendars, func(i, j int) bool {
		if calendars[i].Primary != calendars[j].Primary {
			return calendars[i].Primary
		}
		return collator.CompareString(calendars[i].DisplayName, calendars[j].DisplayName) < 0
	})
	return calendars, nil
}
