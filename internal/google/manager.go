package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/chelly1221/shift-calendar-sub001/internal/logging"
	"github.com/chelly1221/shift-calendar-sub001/internal/store"
)

// Environment variables that configure the OAuth client. The settings store
// is consulted when they are unset.
const (
	EnvClientID     = "GOOGLE_OAUTH_CLIENT_ID"
	EnvClientSecret = "GOOGLE_OAUTH_CLIENT_SECRET"
)

const (
	defaultRevokeURL   = "https://oauth2.googleapis.com/revoke"
	defaultUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// Lifecycle errors surfaced to callers.
var (
	// ErrNotConfigured indicates the OAuth client id/secret are missing from
	// both the environment and the settings store.
	ErrNotConfigured = errors.New("google oauth client is not configured: set " +
		EnvClientID + " and " + EnvClientSecret + " or store them in settings")

	// ErrNotConnected indicates no refresh credential is stored.
	ErrNotConnected = errors.New("google account is not connected")
)

// Manager owns acquisition, persistence, refresh and revocation of the
// credential used to call the remote calendar API.
type Manager struct {
	settings    store.Settings
	credentials store.CredentialStore
	logger      *slog.Logger

	// Overridable in tests.
	endpoint    oauth2.Endpoint
	revokeURL   string
	userinfoURL string
}

// NewManager creates a Manager reading configuration from the given stores.
// A nil logger falls back to slog.Default.
func NewManager(settings store.Settings, credentials store.CredentialStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		settings:    settings,
		credentials: credentials,
		logger:      logger,
		endpoint:    googleoauth.Endpoint,
		revokeURL:   defaultRevokeURL,
		userinfoURL: defaultUserinfoURL,
	}
}

// oauthConfig builds the OAuth2 config, failing fast when the client id or
// secret cannot be resolved.
func (m *Manager) oauthConfig(redirectURL string) (*oauth2.Config, error) {
	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)

	if clientID == "" && m.settings != nil {
		v, err := m.settings.Get(store.KeyClientID)
		if err != nil {
			return nil, fmt.Errorf("read client id from settings: %w", err)
		}
		clientID = v
	}
	if clientSecret == "" && m.settings != nil {
		v, err := m.settings.Get(store.KeyClientSecret)
		if err != nil {
			return nil, fmt.Errorf("read client secret from settings: %w", err)
		}
		clientSecret = v
	}
	if clientID == "" || clientSecret == "" {
		return nil, ErrNotConfigured
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     m.endpoint,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			calendar.CalendarScope,
		},
	}, nil
}

// IsConnected reports whether a refresh credential is currently stored.
func (m *Manager) IsConnected() bool {
	refresh, err := m.credentials.Load()
	return err == nil && refresh != ""
}

// AuthorizedClient returns an HTTP client that authenticates calls with the
// stored credential. The refresh exchange is exercised once up front so auth
// failures surface here rather than on the first API call.
func (m *Manager) AuthorizedClient(ctx context.Context) (*http.Client, error) {
	conf, err := m.oauthConfig("")
	if err != nil {
		return nil, err
	}

	refresh, err := m.credentials.Load()
	if err != nil {
		return nil, fmt.Errorf("load google credential: %w", err)
	}
	if refresh == "" {
		return nil, ErrNotConnected
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh})
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("refresh google credential: %w", err)
	}

	return oauth2.NewClient(ctx, ts), nil
}

// Disconnect best-effort revokes the stored credential remotely and always
// clears it locally. Revocation failures are logged, not returned.
func (m *Manager) Disconnect(ctx context.Context) error {
	refresh, err := m.credentials.Load()
	if err == nil && refresh != "" {
		if err := m.revoke(ctx, refresh); err != nil {
			m.logger.Warn("token revocation failed",
				logging.Err(err),
				slog.String("token", logging.SanitizeToken(refresh)))
		}
	}
	return m.credentials.Clear()
}

func (m *Manager) revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revocation endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// fetchUserEmail retrieves the authenticated user's email for display.
// Failures are swallowed by the caller; the connection is already complete.
func (m *Manager) fetchUserEmail(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (string, error) {
	client := conf.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.userinfoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	return info.Email, nil
}
