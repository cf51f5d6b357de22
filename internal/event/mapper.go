package event

import (
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

const (
	dateLayout  = "2006-01-02"
	rrulePrefix = "RRULE:"

	// fallbackZone anchors date-only events when neither the remote item nor
	// the system supplies a usable zone.
	fallbackZone = "Asia/Seoul"

	statusCancelled = "cancelled"
)

// ToSnapshot normalizes one remote item into a Snapshot.
//
// It returns nil when the item carries no identifier or when either endpoint
// has an unparseable date, so a malformed item drops out of a pull page
// instead of aborting it. Cancelled items map to a minimal tombstone whose
// start and end both carry the remote update instant, since cancelled items
// have no reliable schedule.
func ToSnapshot(item *calendar.Event) *Snapshot {
	if item == nil || item.Id == "" {
		return nil
	}

	updated := parseRFC3339(item.Updated)

	if item.Status == statusCancelled {
		anchor := updated
		if anchor.IsZero() {
			anchor = time.Now().UTC()
		}
		return &Snapshot{
			RemoteID:      item.Id,
			EventType:     TypeGeneral,
			Timezone:      "UTC",
			StartUTC:      anchor,
			EndUTC:        anchor,
			RemoteUpdated: anchor,
			IsDeleted:     true,
		}
	}

	start, zone, ok := parseEndpoint(item.Start)
	if !ok {
		return nil
	}
	end, _, ok := parseEndpoint(item.End)
	if !ok {
		return nil
	}

	eventType := TypeGeneral
	summary := item.Summary
	description := item.Description

	slotValue, slotPresent := "", false
	if item.ExtendedProperties != nil && item.ExtendedProperties.Private != nil {
		slotValue, slotPresent = item.ExtendedProperties.Private[PropertyKeyEventType]
	}
	if slotPresent {
		if v := strings.TrimSpace(slotValue); v != "" {
			eventType = v
		}
	} else if inferred, matched := InferFromTitle(item.Summary); matched {
		// Items created before the metadata slot existed carry their
		// semantics only in the title.
		eventType = inferred.EventType
		summary = inferred.Summary
		description = inferred.Description
	}

	snap := &Snapshot{
		RemoteID:         item.Id,
		EventType:        eventType,
		Summary:          summary,
		Description:      description,
		Location:         item.Location,
		StartUTC:         start,
		EndUTC:           end,
		Timezone:         zone,
		Recurrence:       ExtractRRule(item.Recurrence),
		RecurringEventID: item.RecurringEventId,
		HangoutLink:      item.HangoutLink,
		RemoteUpdated:    updated,
	}

	if item.OriginalStartTime != nil {
		if t, _, okOrig := parseEndpoint(item.OriginalStartTime); okOrig {
			snap.OriginalStartUTC = t
		}
	}
	if item.Organizer != nil {
		snap.Organizer = item.Organizer.Email
	}
	for _, att := range item.Attendees {
		if att != nil && att.Email != "" {
			snap.Attendees = append(snap.Attendees, att.Email)
		}
	}

	return snap
}

// ToRequest renders a local event into a request body for insert or patch.
//
// Events whose endpoints both fall on local midnight in the event's zone are
// emitted with date-only endpoints; the end date is exclusive per the remote
// convention. The event-type slot is always written, even when empty, so a
// pushed event never round-trips through the title heuristic.
func ToRequest(e *LocalEvent) *calendar.Event {
	req := &calendar.Event{
		Summary:     FormatSummary(e),
		Description: e.Description,
		Location:    e.Location,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{PropertyKeyEventType: e.EventType},
		},
	}

	loc := locationFor(e.Timezone)
	start := e.StartUTC.In(loc)
	end := e.EndUTC.In(loc)

	if isWholeDay(start, end) {
		req.Start = &calendar.EventDateTime{Date: start.Format(dateLayout)}
		req.End = &calendar.EventDateTime{Date: end.Format(dateLayout)}
	} else {
		zone := e.Timezone
		if zone == "" {
			zone = "UTC"
		}
		req.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: zone}
		req.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: zone}
	}

	if e.Recurrence != "" {
		req.Recurrence = []string{NormalizeRRule(e.Recurrence)}
	}
	for _, email := range e.Attendees {
		if email != "" {
			req.Attendees = append(req.Attendees, &calendar.EventAttendee{Email: email})
		}
	}

	return req
}

// AlignTimeShape rewrites the request's start/end to use whichever shape
// (date-only or datetime) the remote item currently has. A single-occurrence
// edit must not flip a series between whole-day and timed representation.
func AlignTimeShape(e *LocalEvent, req, remote *calendar.Event) {
	if req == nil || req.Start == nil || remote == nil || remote.Start == nil {
		return
	}
	remoteAllDay := remote.Start.Date != ""
	if remoteAllDay == (req.Start.Date != "") {
		return
	}

	loc := locationFor(e.Timezone)
	start := e.StartUTC.In(loc)
	end := e.EndUTC.In(loc)

	if remoteAllDay {
		startDate := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		endDate := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
		if !end.Equal(endDate) {
			// A mid-day end still covers its calendar day; the remote end
			// date is exclusive.
			endDate = endDate.AddDate(0, 0, 1)
		}
		if !endDate.After(startDate) {
			endDate = startDate.AddDate(0, 0, 1)
		}
		req.Start = &calendar.EventDateTime{Date: startDate.Format(dateLayout)}
		req.End = &calendar.EventDateTime{Date: endDate.Format(dateLayout)}
		return
	}

	zone := e.Timezone
	if zone == "" {
		zone = "UTC"
	}
	req.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: zone}
	req.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: zone}
}

// NormalizeRRule returns the rule with the RRULE: prefix the remote service
// expects in its recurrence-line list.
func NormalizeRRule(rule string) string {
	if strings.HasPrefix(rule, rrulePrefix) {
		return rule
	}
	return rrulePrefix + rule
}

// ExtractRRule scans a remote recurrence-line list for the RRULE entry and
// strips the prefix. Other lines (EXDATE, RDATE) are not part of the local
// model.
func ExtractRRule(recurrence []string) string {
	for _, line := range recurrence {
		if strings.HasPrefix(line, rrulePrefix) {
			return strings.TrimPrefix(line, rrulePrefix)
		}
	}
	return ""
}

// parseEndpoint converts one wire endpoint into an absolute UTC instant plus
// the zone label to keep with it. The second return is the zone label; the
// third reports whether the endpoint was usable.
func parseEndpoint(edt *calendar.EventDateTime) (time.Time, string, bool) {
	switch {
	case edt == nil:
		return time.Time{}, "", false
	case edt.DateTime != "":
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, "", false
		}
		zone := edt.TimeZone
		if zone == "" {
			zone = t.Location().String()
		}
		if zone == "" {
			zone = "UTC"
		}
		return t.UTC(), zone, true
	case edt.Date != "":
		loc := locationFor(edt.TimeZone)
		t, err := time.ParseInLocation(dateLayout, edt.Date, loc)
		if err != nil {
			return time.Time{}, "", false
		}
		zone := edt.TimeZone
		if zone == "" {
			zone = loc.String()
		}
		return t.UTC(), zone, true
	default:
		return time.Time{}, "", false
	}
}

// locationFor resolves an IANA zone label, falling back to the system zone
// and finally to a fixed zone when nothing else is usable.
func locationFor(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if time.Local != nil {
		return time.Local
	}
	if loc, err := time.LoadLocation(fallbackZone); err == nil {
		return loc
	}
	return time.UTC
}

// isWholeDay reports whether both endpoints fall exactly on local midnight
// with a positive span, i.e. the event covers whole calendar days.
func isWholeDay(start, end time.Time) bool {
	return isMidnight(start) && isMidnight(end) && end.After(start)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func parseRFC3339(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
