package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/chelly1221/shift-calendar-sub001/internal/event"
)

func timedEvent() *event.LocalEvent {
	return &event.LocalEvent{
		EventType: event.TypeGeneral,
		Summary:   "주간 근무",
		StartUTC:  time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC),
		EndUTC:    time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Timezone:  "Asia/Seoul",
	}
}

func decodeEvent(t *testing.T, r *http.Request) *calendar.Event {
	t.Helper()
	var body calendar.Event
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return &body
}

const timedRemoteJSON = `{
	"id": "ev1",
	"status": "confirmed",
	"start": {"dateTime": "2026-03-02T10:00:00+09:00", "timeZone": "Asia/Seoul"},
	"end": {"dateTime": "2026-03-02T19:00:00+09:00", "timeZone": "Asia/Seoul"}
}`

func TestPushCreate(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/calendars/cal1/events", r.URL.Path)
		assert.Equal(t, "none", r.URL.Query().Get("sendUpdates"))

		body := decodeEvent(t, r)
		assert.Equal(t, "주간 근무", body.Summary)
		require.NotNil(t, body.ExtendedProperties)
		assert.Equal(t, event.TypeGeneral, body.ExtendedProperties.Private[event.PropertyKeyEventType])

		writeJSON(w, `{"id": "new1", "updated": "2026-03-01T00:00:00Z"}`)
	})

	result, err := c.Push(context.Background(), CreateOp{Event: timedEvent()})
	require.NoError(t, err)
	require.NotNil(t, result.RemoteID)
	assert.Equal(t, "new1", *result.RemoteID)
	require.NotNil(t, result.RemoteUpdated)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *result.RemoteUpdated)
}

func TestPushCreateMissingEvent(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	_, err := c.Push(context.Background(), CreateOp{})
	assert.ErrorIs(t, err, ErrMissingEvent)
}

func TestPushDeleteWithoutRemoteIDIsNoop(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	result, err := c.Push(context.Background(), DeleteOp{Event: timedEvent()})
	require.NoError(t, err)
	assert.Nil(t, result.RemoteID)
	assert.Nil(t, result.RemoteUpdated)
}

func TestPushDeleteAlreadyGone(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/calendars/cal1/events/ev1", r.URL.Path)
		writeAPIError(w, http.StatusGone, "Resource has been deleted")
	})

	_, err := c.Push(context.Background(), DeleteOp{RemoteID: "ev1"})
	assert.NoError(t, err)
}

func TestPushDeleteSendUpdatesPassthrough(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("sendUpdates"))
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := c.Push(context.Background(), DeleteOp{RemoteID: "ev1", SendUpdates: "all"})
	assert.NoError(t, err)
}

func TestPushDeleteError(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusInternalServerError, "backend error")
	})

	_, err := c.Push(context.Background(), DeleteOp{RemoteID: "ev1"})
	assert.ErrorContains(t, err, "delete event")
}

func TestPushSeriesPatch(t *testing.T) {
	patched := false
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendars/cal1/events/ev1", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, timedRemoteJSON)
		case http.MethodPatch:
			patched = true
			body := decodeEvent(t, r)
			assert.Equal(t, "주간 근무", body.Summary)
			require.Len(t, body.Recurrence, 1)
			assert.Equal(t, "RRULE:FREQ=DAILY", body.Recurrence[0])
			writeJSON(w, `{"id": "ev1", "updated": "2026-03-02T00:00:00Z"}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	e := timedEvent()
	e.RemoteID = "ev1"
	e.Recurrence = "FREQ=DAILY"

	result, err := c.Push(context.Background(), UpdateSeriesOp{Event: e})
	require.NoError(t, err)
	assert.True(t, patched)
	require.NotNil(t, result.RemoteID)
	assert.Equal(t, "ev1", *result.RemoteID)
}

func TestPushSeriesInsertsWhenNeverPushed(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/calendars/cal1/events", r.URL.Path)
		writeJSON(w, `{"id": "new2"}`)
	})

	result, err := c.Push(context.Background(), UpdateSeriesOp{Event: timedEvent()})
	require.NoError(t, err)
	require.NotNil(t, result.RemoteID)
	assert.Equal(t, "new2", *result.RemoteID)
}

func TestPushSeriesPreservesRemoteRule(t *testing.T) {
	gets := 0
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets++
			writeJSON(w, `{
				"id": "ev1",
				"status": "confirmed",
				"recurrence": ["RRULE:FREQ=WEEKLY;BYDAY=MO", "EXDATE;TZID=Asia/Seoul:20260316T100000"],
				"start": {"dateTime": "2026-03-02T10:00:00+09:00", "timeZone": "Asia/Seoul"},
				"end": {"dateTime": "2026-03-02T19:00:00+09:00", "timeZone": "Asia/Seoul"}
			}`)
		case http.MethodPatch:
			body := decodeEvent(t, r)
			require.Len(t, body.Recurrence, 1)
			assert.Equal(t, "RRULE:FREQ=WEEKLY;BYDAY=MO", body.Recurrence[0])
			writeJSON(w, `{"id": "ev1"}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	e := timedEvent()
	e.RemoteID = "ev1"

	_, err := c.Push(context.Background(), UpdateSeriesOp{Event: e})
	require.NoError(t, err)
	assert.Equal(t, 1, gets, "rule check and shape alignment share one fetch")
}

func TestPushOccurrenceResolvesInstance(t *testing.T) {
	pivot := time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)
	patchedID := ""

	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/calendars/cal1/events/series1/instances":
			q := r.URL.Query()
			assert.Equal(t, pivot.Add(-24*time.Hour).Format(time.RFC3339), q.Get("timeMin"))
			assert.Equal(t, pivot.Add(24*time.Hour).Format(time.RFC3339), q.Get("timeMax"))
			writeJSON(w, `{
				"items": [
					{
						"id": "series1_a",
						"status": "confirmed",
						"originalStartTime": {"dateTime": "2026-03-08T10:00:00+09:00"},
						"start": {"dateTime": "2026-03-08T10:00:00+09:00"},
						"end": {"dateTime": "2026-03-08T19:00:00+09:00"}
					},
					{
						"id": "series1_b",
						"status": "confirmed",
						"originalStartTime": {"dateTime": "2026-03-09T10:00:00+09:00"},
						"start": {"dateTime": "2026-03-09T10:00:00+09:00"},
						"end": {"dateTime": "2026-03-09T19:00:00+09:00"}
					}
				]
			}`)
		case r.URL.Path == "/calendars/cal1/events/series1_b" && r.Method == http.MethodGet:
			writeJSON(w, timedRemoteJSON)
		case r.URL.Path == "/calendars/cal1/events/series1_b" && r.Method == http.MethodPatch:
			patchedID = "series1_b"
			writeJSON(w, `{"id": "series1_b"}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	e := timedEvent()
	e.StartUTC = pivot
	e.EndUTC = pivot.Add(9 * time.Hour)
	e.RecurringEventID = "series1"
	e.OriginalStartUTC = pivot

	result, err := c.Push(context.Background(), UpdateOccurrenceOp{Event: e})
	require.NoError(t, err)
	assert.Equal(t, "series1_b", patchedID)
	require.NotNil(t, result.RemoteID)
	assert.Equal(t, "series1_b", *result.RemoteID)
}

func TestPushOccurrenceToleranceBoundary(t *testing.T) {
	pivot := time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		originalStart string
		wantResolved  bool
	}{
		{"sub-second offset matches", "2026-03-09T10:00:00.9+09:00", true},
		{"two-second offset does not", "2026-03-09T10:00:02+09:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.URL.Path == "/calendars/cal1/events/series1/instances":
					writeJSON(w, `{
						"items": [
							{
								"id": "series1_x",
								"status": "confirmed",
								"originalStartTime": {"dateTime": "`+tt.originalStart+`"},
								"start": {"dateTime": "`+tt.originalStart+`"},
								"end": {"dateTime": "2026-03-09T19:00:00+09:00"}
							}
						]
					}`)
				case r.URL.Path == "/calendars/cal1/events/series1_x":
					if r.Method == http.MethodPatch && !tt.wantResolved {
						t.Error("patched an instance outside the match tolerance")
					}
					writeJSON(w, `{"id": "series1_x"}`)
				default:
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
			})

			e := timedEvent()
			e.StartUTC = pivot
			e.EndUTC = pivot.Add(9 * time.Hour)
			e.RecurringEventID = "series1"
			e.OriginalStartUTC = pivot

			result, err := c.Push(context.Background(), UpdateOccurrenceOp{Event: e})
			if tt.wantResolved {
				require.NoError(t, err)
				require.NotNil(t, result.RemoteID)
				assert.Equal(t, "series1_x", *result.RemoteID)
			} else {
				assert.ErrorIs(t, err, ErrOccurrenceNotResolved)
			}
		})
	}
}

func TestPushOccurrenceUnresolved(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendars/cal1/events/series1/instances", r.URL.Path)
		writeJSON(w, `{"items": []}`)
	})

	e := timedEvent()
	e.RecurringEventID = "series1"
	e.OriginalStartUTC = time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)

	_, err := c.Push(context.Background(), UpdateOccurrenceOp{Event: e})
	assert.ErrorIs(t, err, ErrOccurrenceNotResolved)
}

func TestPushOccurrenceWithoutSeriesLinkage(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	_, err := c.Push(context.Background(), UpdateOccurrenceOp{Event: timedEvent()})
	assert.ErrorIs(t, err, ErrOccurrenceNotResolved)
}

func TestPushOccurrenceExplicitRemoteID(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendars/cal1/events/inst7", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, timedRemoteJSON)
		case http.MethodPatch:
			writeJSON(w, `{"id": "inst7"}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	result, err := c.Push(context.Background(), UpdateOccurrenceOp{Event: timedEvent(), RemoteID: "inst7"})
	require.NoError(t, err)
	require.NotNil(t, result.RemoteID)
	assert.Equal(t, "inst7", *result.RemoteID)
}

func TestPushFuture(t *testing.T) {
	splitAt := time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)

	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendars/cal1/events/series1", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, `{
				"id": "series1",
				"status": "confirmed",
				"recurrence": ["RRULE:FREQ=DAILY"],
				"start": {"dateTime": "2026-03-02T10:00:00+09:00"},
				"end": {"dateTime": "2026-03-02T19:00:00+09:00"}
			}`)
		case http.MethodPatch:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body, 1, "patch must touch the recurrence only")

			lines, ok := body["recurrence"].([]any)
			require.True(t, ok)
			require.Len(t, lines, 1)
			rule := lines[0].(string)
			assert.Contains(t, rule, "RRULE:")
			assert.Contains(t, rule, "FREQ=DAILY")
			assert.Contains(t, rule, "UNTIL=20260309T005959Z")
			writeJSON(w, `{"id": "series1", "updated": "2026-03-09T02:00:00Z"}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	e := timedEvent()
	e.RemoteID = "series1"

	result, err := c.Push(context.Background(), UpdateFutureOp{Event: e, SplitAt: splitAt})
	require.NoError(t, err)
	require.NotNil(t, result.RemoteID)
	assert.Equal(t, "series1", *result.RemoteID)
}

func TestPushFutureNotRecurring(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{
			"id": "single1",
			"status": "confirmed",
			"start": {"dateTime": "2026-03-02T10:00:00+09:00"},
			"end": {"dateTime": "2026-03-02T19:00:00+09:00"}
		}`)
	})

	_, err := c.Push(context.Background(), UpdateFutureOp{
		RemoteID: "single1",
		SplitAt:  time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrNotRecurring)
}

func TestPushFutureMissingRemoteID(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	_, err := c.Push(context.Background(), UpdateFutureOp{
		Event:   timedEvent(),
		SplitAt: time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrMissingRemoteID)
}

func TestAlignShapeOnPatch(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			// Remote representation is whole-day.
			writeJSON(w, `{
				"id": "ev1",
				"status": "confirmed",
				"start": {"date": "2026-03-02"},
				"end": {"date": "2026-03-03"}
			}`)
		case http.MethodPatch:
			body := decodeEvent(t, r)
			require.NotNil(t, body.Start)
			assert.Equal(t, "2026-03-02", body.Start.Date)
			assert.Empty(t, body.Start.DateTime)
			assert.Equal(t, "2026-03-03", body.End.Date)
			writeJSON(w, `{"id": "ev1"}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	e := timedEvent()
	e.RemoteID = "ev1"
	e.Recurrence = "FREQ=DAILY"

	_, err := c.Push(context.Background(), UpdateSeriesOp{Event: e})
	require.NoError(t, err)
}
