package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/chelly1221/shift-calendar-sub001/internal/event"
	"github.com/chelly1221/shift-calendar-sub001/internal/logging"
	"github.com/chelly1221/shift-calendar-sub001/internal/metrics"
	"github.com/chelly1221/shift-calendar-sub001/internal/recur"
)

const (
	// sendUpdatesNone is the default notification policy: notify no one.
	sendUpdatesNone = "none"

	// occurrenceWindow is the listing window around an occurrence's original
	// start when resolving its remote identity.
	occurrenceWindow = 24 * time.Hour

	// occurrenceTolerance bounds the distance between the stored original
	// start and a candidate instance's original start. Sub-second rounding
	// between local and remote clocks stays inside it; an adjacent
	// occurrence never does.
	occurrenceTolerance = time.Second
)

// Push applies one queued local mutation to the remote calendar. Operations
// are idempotent or fail cleanly without partial remote mutation, so a
// caller may retry by re-invoking the whole operation.
func (c *Client) Push(ctx context.Context, op PushOp) (PushResult, error) {
	result, err := c.push(ctx, op)

	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	metrics.PushesTotal.WithLabelValues(string(op.Operation()), status).Inc()
	logging.WithOperation(c.logger, string(op.Operation())).
		Debug("push completed", logging.Status(status), logging.Err(err))
	return result, err
}

func (c *Client) push(ctx context.Context, op PushOp) (PushResult, error) {
	switch op := op.(type) {
	case DeleteOp:
		return c.pushDelete(ctx, op)
	case UpdateFutureOp:
		return c.pushFuture(ctx, op)
	case UpdateOccurrenceOp:
		return c.pushOccurrence(ctx, op)
	case UpdateSeriesOp:
		return c.pushSeries(ctx, op)
	case CreateOp:
		if op.Event == nil {
			return PushResult{}, ErrMissingEvent
		}
		return c.insertEvent(ctx, op.Event, op.SendUpdates)
	default:
		return PushResult{}, fmt.Errorf("unsupported push operation %q", op.Operation())
	}
}

// pushDelete removes the remote event. With no remote identifier there is
// nothing to act on; a target that is already gone counts as success, so
// delete is idempotent.
func (c *Client) pushDelete(ctx context.Context, op DeleteOp) (PushResult, error) {
	id := resolveRemoteID(op.RemoteID, op.Event)
	if id == "" {
		return PushResult{}, nil
	}

	err := c.svc.Events.Delete(c.calendarID, id).
		SendUpdates(sendUpdatesOrDefault(op.SendUpdates)).
		Context(ctx).Do()
	if err != nil && !isAlreadyGone(err) {
		return PushResult{}, fmt.Errorf("delete event: %w", err)
	}
	return PushResult{}, nil
}

// pushFuture terminates the remote series just before the split instant by
// patching only the recurrence field with the bounded rule. The operation is
// undefined for non-recurring events.
func (c *Client) pushFuture(ctx context.Context, op UpdateFutureOp) (PushResult, error) {
	id := resolveRemoteID(op.RemoteID, op.Event)
	if id == "" {
		return PushResult{}, fmt.Errorf("recur-future: %w", ErrMissingRemoteID)
	}
	if op.SplitAt.IsZero() {
		return PushResult{}, fmt.Errorf("recur-future: missing split instant")
	}

	master, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
	if err != nil {
		return PushResult{}, fmt.Errorf("get series master: %w", err)
	}
	rule := event.ExtractRRule(master.Recurrence)
	if rule == "" {
		return PushResult{}, fmt.Errorf("recur-future on %s: %w", id, ErrNotRecurring)
	}

	bounded, err := recur.SplitBefore(rule, op.SplitAt)
	if err != nil {
		return PushResult{}, err
	}

	patch := &calendar.Event{Recurrence: []string{event.NormalizeRRule(bounded)}}
	updated, err := c.svc.Events.Patch(c.calendarID, id, patch).
		SendUpdates(sendUpdatesOrDefault(op.SendUpdates)).
		Context(ctx).Do()
	if err != nil {
		return PushResult{}, fmt.Errorf("patch series recurrence: %w", err)
	}
	return toResult(updated), nil
}

// pushOccurrence edits one occurrence of a series. An unknown remote
// identifier is resolved against the series' instances; failure to resolve
// is fatal, this operation must never fall through to creating a new series.
func (c *Client) pushOccurrence(ctx context.Context, op UpdateOccurrenceOp) (PushResult, error) {
	if op.Event == nil {
		return PushResult{}, ErrMissingEvent
	}

	id := resolveRemoteID(op.RemoteID, op.Event)
	if id == "" {
		seriesID := op.SeriesID
		if seriesID == "" {
			seriesID = op.Event.RecurringEventID
		}
		pivot := op.OriginalStartUTC
		if pivot.IsZero() {
			pivot = op.Event.OriginalStartUTC
		}

		resolved, err := c.resolveOccurrence(ctx, seriesID, pivot)
		if err != nil {
			return PushResult{}, err
		}
		id = resolved
	}

	return c.patchEvent(ctx, op.Event, id, nil, "", op.SendUpdates)
}

// pushSeries edits a whole series or singleton. An event never pushed is
// inserted instead. When the event has no local recurrence rule but the
// remote master carries one, the remote rule is attached to the outgoing
// body so the edit never de-recurs the series; the event was likely edited
// before recurrence metadata existed locally. The master fetched for the
// rule check doubles as the shape-alignment reference, so the preservation
// path costs no extra round trip.
func (c *Client) pushSeries(ctx context.Context, op UpdateSeriesOp) (PushResult, error) {
	if op.Event == nil {
		return PushResult{}, ErrMissingEvent
	}

	id := resolveRemoteID(op.RemoteID, op.Event)
	if id == "" {
		return c.insertEvent(ctx, op.Event, op.SendUpdates)
	}

	var remote *calendar.Event
	preservedRule := ""
	if op.Event.Recurrence == "" {
		master, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
		if err != nil {
			c.logger.Warn("could not check remote recurrence before series patch",
				logging.EventID(id), logging.Err(err))
		} else {
			remote = master
			preservedRule = event.ExtractRRule(master.Recurrence)
		}
	}

	return c.patchEvent(ctx, op.Event, id, remote, preservedRule, op.SendUpdates)
}

// resolveOccurrence lists the series' instances in a ±1-day window around
// the original start and matches the instance whose own original start is
// within the tolerance.
func (c *Client) resolveOccurrence(ctx context.Context, seriesID string, pivot time.Time) (string, error) {
	if seriesID == "" || pivot.IsZero() {
		return "", fmt.Errorf("occurrence without series linkage: %w", ErrOccurrenceNotResolved)
	}

	instances, err := c.svc.Events.Instances(c.calendarID, seriesID).
		TimeMin(pivot.Add(-occurrenceWindow).Format(time.RFC3339)).
		TimeMax(pivot.Add(occurrenceWindow).Format(time.RFC3339)).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list series instances: %w", err)
	}

	for _, inst := range instances.Items {
		if inst.OriginalStartTime == nil {
			continue
		}
		snap := event.ToSnapshot(inst)
		if snap == nil || snap.OriginalStartUTC.IsZero() {
			continue
		}
		if absDuration(snap.OriginalStartUTC.Sub(pivot)) <= occurrenceTolerance {
			return inst.Id, nil
		}
	}
	return "", fmt.Errorf("no instance of %s near %s: %w",
		seriesID, pivot.Format(time.RFC3339), ErrOccurrenceNotResolved)
}

func (c *Client) insertEvent(ctx context.Context, e *event.LocalEvent, sendUpdates string) (PushResult, error) {
	created, err := c.svc.Events.Insert(c.calendarID, event.ToRequest(e)).
		SendUpdates(sendUpdatesOrDefault(sendUpdates)).
		Context(ctx).Do()
	if err != nil {
		return PushResult{}, fmt.Errorf("insert event: %w", err)
	}
	return toResult(created), nil
}

// patchEvent is the default update path: build the body, best-effort align
// its time shape with the current remote representation, then patch. A nil
// remote triggers a prefetch; its failure is non-fatal and the unaligned
// body is sent.
func (c *Client) patchEvent(ctx context.Context, e *event.LocalEvent, id string, remote *calendar.Event, preservedRule, sendUpdates string) (PushResult, error) {
	body := event.ToRequest(e)
	if preservedRule != "" {
		body.Recurrence = []string{event.NormalizeRRule(preservedRule)}
	}

	if remote == nil {
		fetched, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
		if err != nil {
			c.logger.Warn("shape alignment prefetch failed, sending unaligned body",
				logging.EventID(id), logging.Err(err))
		} else {
			remote = fetched
		}
	}
	if remote != nil {
		event.AlignTimeShape(e, body, remote)
	}

	updated, err := c.svc.Events.Patch(c.calendarID, id, body).
		SendUpdates(sendUpdatesOrDefault(sendUpdates)).
		Context(ctx).Do()
	if err != nil {
		return PushResult{}, fmt.Errorf("patch event: %w", err)
	}
	return toResult(updated), nil
}

// resolveRemoteID picks the target identifier: the explicit one from the
// operation first, then the local event's stored identifier.
func resolveRemoteID(explicit string, e *event.LocalEvent) string {
	if explicit != "" {
		return explicit
	}
	if e != nil {
		return e.RemoteID
	}
	return ""
}

func sendUpdatesOrDefault(s string) string {
	if s == "" {
		return sendUpdatesNone
	}
	return s
}

func toResult(item *calendar.Event) PushResult {
	if item == nil {
		return PushResult{}
	}
	result := PushResult{RemoteID: &item.Id}
	if item.Updated != "" {
		if t, err := time.Parse(time.RFC3339, item.Updated); err == nil {
			utc := t.UTC()
			result.RemoteUpdated = &utc
		}
	}
	return result
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
