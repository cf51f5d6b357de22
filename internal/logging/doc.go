// Package logging provides structured logging helpers built on log/slog.
//
// It defines the shared attribute keys used across the sync engine so that
// log lines from the puller, pusher and token manager can be correlated, and
// small helpers for attributes that need consistent formatting (errors,
// masked tokens).
package logging
