// Package calendar drives both directions of the reconciliation protocol
// against the Google Calendar API.
//
// Inbound, the puller retrieves remote changes one page at a time, either as
// a full time-ranged listing or incrementally from an opaque sync token, and
// backfills recurrence rules onto series occurrences. Outbound, the pusher
// applies one queued local mutation per call: each outbox operation is a
// tagged variant carrying exactly the fields its branch needs, and every
// operation is idempotent or fails cleanly without partial remote mutation,
// so callers may retry by re-invoking the whole operation.
//
// The caller is responsible for sequencing: at most one pull pass or one push
// is assumed in flight per calendar at a time, and the package takes no
// internal locks.
package calendar
