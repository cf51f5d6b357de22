package event

import "time"

// Semantic event types. These are free-form tags; the constants below are the
// ones the engine itself assigns.
const (
	TypeGeneral = "일반"
	TypeLeave   = "휴가"
	TypeHoliday = "휴일"
)

// PropertyKeyEventType is the private extended-property slot that carries the
// semantic event type on the remote event.
const PropertyKeyEventType = "shiftCalendarEventType"

// LocalEvent is the engine's view of one event in the local store.
type LocalEvent struct {
	ID       string // local identifier
	RemoteID string // empty until first successful push

	EventType   string // free-form tag, default TypeGeneral
	Summary     string
	Description string
	Location    string

	StartUTC time.Time
	EndUTC   time.Time
	Timezone string // IANA zone label

	Attendees []string // attendee email addresses

	// Recurrence is the RFC 5545 RRULE body without the "RRULE:" prefix.
	// Empty means the event does not recur.
	Recurrence string

	// RecurringEventID links an occurrence or exception to its series
	// master. When set, OriginalStartUTC must carry the occurrence's
	// original start instant.
	RecurringEventID string
	OriginalStartUTC time.Time

	Organizer   string
	HangoutLink string

	RemoteUpdated time.Time // last known remote update instant
	LocalEdited   time.Time
	SyncState     string
}

// Snapshot is the engine's normalized view of one remote item. It is produced
// exclusively by ToSnapshot and consumed within a single sync pass.
type Snapshot struct {
	RemoteID string

	EventType   string
	Summary     string
	Description string
	Location    string

	StartUTC time.Time
	EndUTC   time.Time
	Timezone string

	Attendees []string

	Recurrence       string
	RecurringEventID string
	OriginalStartUTC time.Time

	Organizer   string
	HangoutLink string

	RemoteUpdated time.Time
	IsDeleted     bool
}
