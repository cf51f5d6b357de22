package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/chelly1221/shift-calendar-sub001/internal/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	settings := store.NewFileSettingsAt(filepath.Join(dir, "settings.yaml"))
	credentials := store.NewFileCredentialStoreAt(filepath.Join(dir, "google.token"))
	return NewManager(settings, credentials, nil)
}

// fakeTokenEndpoint serves the refresh/exchange grant with a fixed response.
func fakeTokenEndpoint(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOAuthConfigUnconfigured(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	m := newTestManager(t)
	_, err := m.oauthConfig("")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOAuthConfigFromEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvClientSecret, "env-secret")

	m := newTestManager(t)
	conf, err := m.oauthConfig("http://127.0.0.1:1234/oauth2callback")
	require.NoError(t, err)
	assert.Equal(t, "env-id", conf.ClientID)
	assert.Equal(t, "env-secret", conf.ClientSecret)
	assert.Contains(t, conf.Scopes, "https://www.googleapis.com/auth/calendar")
}

func TestOAuthConfigFromSettings(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	m := newTestManager(t)
	require.NoError(t, m.settings.Set(store.KeyClientID, "stored-id"))
	require.NoError(t, m.settings.Set(store.KeyClientSecret, "stored-secret"))

	conf, err := m.oauthConfig("")
	require.NoError(t, err)
	assert.Equal(t, "stored-id", conf.ClientID)
	assert.Equal(t, "stored-secret", conf.ClientSecret)
}

func TestIsConnected(t *testing.T) {
	m := newTestManager(t)
	assert.False(t, m.IsConnected())

	require.NoError(t, m.credentials.Save("1//refresh"))
	assert.True(t, m.IsConnected())
}

func TestAuthorizedClientNotConnected(t *testing.T) {
	t.Setenv(EnvClientID, "id")
	t.Setenv(EnvClientSecret, "secret")

	m := newTestManager(t)
	_, err := m.AuthorizedClient(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestAuthorizedClientEagerRefresh(t *testing.T) {
	t.Setenv(EnvClientID, "id")
	t.Setenv(EnvClientSecret, "secret")

	srv := fakeTokenEndpoint(t, http.StatusOK,
		`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`)

	m := newTestManager(t)
	m.endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token"}
	require.NoError(t, m.credentials.Save("1//refresh"))

	client, err := m.AuthorizedClient(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestAuthorizedClientRefreshFailure(t *testing.T) {
	t.Setenv(EnvClientID, "id")
	t.Setenv(EnvClientSecret, "secret")

	srv := fakeTokenEndpoint(t, http.StatusBadRequest,
		`{"error":"invalid_grant"}`)

	m := newTestManager(t)
	m.endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token"}
	require.NoError(t, m.credentials.Save("1//revoked-refresh"))

	_, err := m.AuthorizedClient(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh google credential")
}

func TestDisconnectRevokesAndClears(t *testing.T) {
	revoked := ""
	revokeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		revoked = r.Form.Get("token")
	}))
	defer revokeSrv.Close()

	m := newTestManager(t)
	m.revokeURL = revokeSrv.URL
	require.NoError(t, m.credentials.Save("1//refresh"))

	require.NoError(t, m.Disconnect(context.Background()))
	assert.Equal(t, "1//refresh", revoked)
	assert.False(t, m.IsConnected())
}

func TestDisconnectClearsEvenWhenRevocationFails(t *testing.T) {
	revokeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer revokeSrv.Close()

	m := newTestManager(t)
	m.revokeURL = revokeSrv.URL
	require.NoError(t, m.credentials.Save("1//refresh"))

	require.NoError(t, m.Disconnect(context.Background()))
	assert.False(t, m.IsConnected())
}

func TestDisconnectWithoutCredentialIsNoop(t *testing.T) {
	m := newTestManager(t)
	assert.NoError(t, m.Disconnect(context.Background()))
}
