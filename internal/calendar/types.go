package calendar

import (
	"time"

	"github.com/chelly1221/shift-calendar-sub001/internal/event"
)

// Operation names the kind of queued local mutation an outbox row carries.
type Operation string

const (
	OpCreate      Operation = "CREATE"
	OpRecurAll    Operation = "RECUR_ALL"
	OpRecurThis   Operation = "RECUR_THIS"
	OpRecurFuture Operation = "RECUR_FUTURE"
	OpDelete      Operation = "DELETE"
)

// SyncPage is one page of pulled results. NextSyncToken is present only on
// the final page of a sync pass and seeds the next incremental pull.
type SyncPage struct {
	Snapshots     []*event.Snapshot
	NextPageToken string
	NextSyncToken string
}

// PushResult carries the remote identifier and update instant resulting from
// a push. Both are nil when the operation had no remote effect, such as
// deleting an event that was never pushed.
type PushResult struct {
	RemoteID      *string
	RemoteUpdated *time.Time
}

// CalendarInfo describes one writable calendar of the authenticated identity.
type CalendarInfo struct {
	ID          string
	DisplayName string
	Primary     bool
	AccessRole  string
}

// PushOp is one queued local mutation. Each variant carries exactly the
// fields its push branch needs; SendUpdates defaults to notifying no one
// when left empty.
type PushOp interface {
	Operation() Operation
}

// CreateOp inserts a new remote event.
type CreateOp struct {
	Event       *event.LocalEvent
	SendUpdates string
}

func (CreateOp) Operation() Operation { return OpCreate }

// UpdateSeriesOp edits a whole series or a singleton event.
type UpdateSeriesOp struct {
	Event *event.LocalEvent
	// RemoteID overrides the event's stored remote identifier when set.
	RemoteID    string
	SendUpdates string
}

func (UpdateSeriesOp) Operation() Operation { return OpRecurAll }

// UpdateOccurrenceOp edits one occurrence of a series only. When RemoteID is
// empty the occurrence is resolved from the parent series and the original
// start instant; resolution failure is fatal to the operation.
type UpdateOccurrenceOp struct {
	Event    *event.LocalEvent
	RemoteID string
	// SeriesID and OriginalStartUTC override the event's stored linkage
	// when set.
	SeriesID         string
	OriginalStartUTC time.Time
	SendUpdates      string
}

func (UpdateOccurrenceOp) Operation() Operation { return OpRecurThis }

// UpdateFutureOp terminates the remote series just before SplitAt, so the
// span from the split onward can be materialized as a new series.
type UpdateFutureOp struct {
	Event       *event.LocalEvent
	RemoteID    string
	SplitAt     time.Time
	SendUpdates string
}

func (UpdateFutureOp) Operation() Operation { return OpRecurFuture }

// DeleteOp removes the remote event. Deleting an event with no remote
// identifier is a no-op.
type DeleteOp struct {
	Event       *event.LocalEvent
	RemoteID    string
	SendUpdates string
}

func (DeleteOp) Operation() Operation { return OpDelete }
