package store

// Setting keys used by the engine.
const (
	KeySelectedCalendar = "selectedCalendarId"
	KeyClientID         = "googleClientId"
	KeyClientSecret     = "googleClientSecret"
	KeyAccountEmail     = "googleAccountEmail"
)

// Settings is the read/write contract for engine configuration values.
// Get returns the empty string for keys that have never been set.
type Settings interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// CredentialStore holds the opaque OAuth refresh credential.
// Load returns the empty string when no credential is stored.
type CredentialStore interface {
	Load() (string, error)
	Save(refreshToken string) error
	Clear() error
}
