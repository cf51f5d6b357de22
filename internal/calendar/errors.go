package calendar

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for invalid operation states. These are always fatal to
// the single operation that produced them.
var (
	// ErrMissingEvent indicates a push operation that requires a local event
	// payload was invoked without one.
	ErrMissingEvent = errors.New("push operation requires a local event payload")

	// ErrMissingRemoteID indicates an operation that only works against an
	// already-pushed event was invoked without a remote identifier.
	ErrMissingRemoteID = errors.New("operation requires a remote event identifier")

	// ErrNotRecurring indicates a series operation targeted a remote event
	// that carries no recurrence rule.
	ErrNotRecurring = errors.New("remote event has no recurrence rule")

	// ErrOccurrenceNotResolved indicates no remote instance matched the
	// occurrence's original start instant.
	ErrOccurrenceNotResolved = errors.New("cannot resolve remote occurrence")
)

// isNotFound reports whether err is the remote's 404 response.
func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// isAlreadyGone reports whether a delete failed because the target was
// already removed: a 404/410 status, or a provider error whose message
// indicates prior deletion.
func isAlreadyGone(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "deleted")
}
