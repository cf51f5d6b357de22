package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/chelly1221/shift-calendar-sub001/internal/event"
	"github.com/chelly1221/shift-calendar-sub001/internal/logging"
	"github.com/chelly1221/shift-calendar-sub001/internal/metrics"
)

// eventFields projects the listing payload down to the fields the mapper
// consumes.
const eventFields = "items(id,status,summary,description,location,start,end,updated," +
	"recurrence,recurringEventId,originalStartTime,extendedProperties,attendees," +
	"organizer,hangoutLink),nextPageToken,nextSyncToken"

// PullQuery selects one of the two mutually exclusive retrieval modes: delta
// (SyncToken set; the remote disallows combining it with a time range) or
// full (explicit TimeMin/TimeMax). PageToken continues a paginated pass.
type PullQuery struct {
	SyncToken string
	TimeMin   time.Time
	TimeMax   time.Time
	PageToken string
}

// PullPage retrieves one page of remote changes, deleted items included, and
// maps them into snapshots. Items with malformed dates are dropped from the
// page rather than aborting the pull. Occurrences that reference a parent
// series but carry no recurrence rule (the remote only attaches the rule to
// the series master) get the master's rule backfilled; master lookups are
// cached for the page so N occurrences of one series cost one extra round
// trip, and a failed lookup keeps the occurrence without a rule.
func (c *Client) PullPage(ctx context.Context, q PullQuery) (*SyncPage, error) {
	call := c.svc.Events.List(c.calendarID).
		ShowDeleted(true).
		SingleEvents(true).
		Fields(googleapi.Field(eventFields)).
		Context(ctx)

	if q.SyncToken != "" {
		call = call.SyncToken(q.SyncToken)
	} else {
		if !q.TimeMin.IsZero() {
			call = call.TimeMin(q.TimeMin.Format(time.RFC3339))
		}
		if !q.TimeMax.IsZero() {
			call = call.TimeMax(q.TimeMax.Format(time.RFC3339))
		}
	}
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}

	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	page := &SyncPage{
		NextPageToken: list.NextPageToken,
		NextSyncToken: list.NextSyncToken,
	}

	// Master-rule lookups are cached per page; a cached empty string records
	// a master without a rule or a failed lookup.
	masterRules := map[string]string{}

	for _, item := range list.Items {
		snap := event.ToSnapshot(item)
		if snap == nil {
			metrics.EventsDroppedTotal.Inc()
			c.logger.Warn("dropping unmappable remote item", logging.EventID(item.Id))
			continue
		}
		if !snap.IsDeleted && snap.RecurringEventID != "" && snap.Recurrence == "" {
			snap.Recurrence = c.masterRule(ctx, snap.RecurringEventID, masterRules)
		}
		metrics.EventsPulledTotal.Inc()
		page.Snapshots = append(page.Snapshots, snap)
	}
	return page, nil
}

func (c *Client) masterRule(ctx context.Context, seriesID string, cache map[string]string) string {
	if rule, ok := cache[seriesID]; ok {
		metrics.MasterLookupsTotal.WithLabelValues(metrics.LookupHit).Inc()
		return rule
	}

	master, err := c.svc.Events.Get(c.calendarID, seriesID).Context(ctx).Do()
	if err != nil {
		// Lenient: the occurrence is kept without a rule.
		metrics.MasterLookupsTotal.WithLabelValues(metrics.LookupFailed).Inc()
		c.logger.Warn("series master lookup failed",
			logging.SeriesID(seriesID), logging.Err(err))
		cache[seriesID] = ""
		return ""
	}

	metrics.MasterLookupsTotal.WithLabelValues(metrics.LookupMiss).Inc()
	rule := event.ExtractRRule(master.Recurrence)
	cache[seriesID] = rule
	return rule
}

// PullHolidays reads the fixed regional holiday calendar across all pages
// within the given range. Every result is forced to the holiday event type
// and deleted entries are discarded.
func (c *Client) PullHolidays(ctx context.Context, timeMin, timeMax time.Time) ([]*event.Snapshot, error) {
	var holidays []*event.Snapshot
	pageToken := ""
	for {
		call := c.svc.Events.List(HolidayCalendarID).
			SingleEvents(true).
			ShowDeleted(true).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list holidays: %w", err)
		}
		for _, item := range list.Items {
			snap := event.ToSnapshot(item)
			if snap == nil || snap.IsDeleted {
				continue
			}
			snap.EventType = event.TypeHoliday
			holidays = append(holidays, snap)
		}
		if list.NextPageToken == "" {
			return holidays, nil
		}
		pageToken = list.NextPageToken
	}
}

// FetchEvent looks up a single remote event. A missing event is a normal
// nil result, not an error.
func (c *Client) FetchEvent(ctx context.Context, id string) (*event.Snapshot, error) {
	item, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event.ToSnapshot(item), nil
}
