package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/chelly1221/shift-calendar-sub001/internal/logging"
	"github.com/chelly1221/shift-calendar-sub001/internal/store"
)

const (
	callbackPath = "/oauth2callback"

	// connectTimeout bounds the wait for the authorization redirect.
	connectTimeout = 180 * time.Second
)

const callbackPage = `<html><body><h1>연동이 완료되었습니다</h1><p>이 탭을 닫고 애플리케이션으로 돌아가세요.</p></body></html>`

type callbackResult struct {
	code string
	err  error
}

// ConnectInteractive runs the interactive authorization flow: it starts a
// single-use loopback listener on an ephemeral port, hands the authorization
// URL to notify (typically a browser launcher), and waits up to 180 seconds
// for the redirect carrying either an authorization code or an error.
//
// Offline access with forced consent is requested so the provider issues a
// refresh token; when it still omits one, a previously stored credential is
// reused. On success the refresh credential is persisted and the
// authenticated user's email is returned when it could be fetched (that
// lookup is best-effort and never fails the connection).
//
// The listener is torn down on every exit path: success, callback error,
// context cancellation and timeout.
func (m *Manager) ConnectInteractive(ctx context.Context, notify func(authURL string)) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("start loopback listener: %w", err)
	}

	redirectURL := fmt.Sprintf("http://%s%s", listener.Addr().String(), callbackPath)
	conf, err := m.oauthConfig(redirectURL)
	if err != nil {
		listener.Close()
		return "", err
	}

	state, err := randomState()
	if err != nil {
		listener.Close()
		return "", fmt.Errorf("generate state: %w", err)
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			http.Error(w, "authorization denied", http.StatusBadRequest)
			deliver(results, callbackResult{err: fmt.Errorf("authorization denied: %s", q.Get("error"))})
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliver(results, callbackResult{err: errors.New("authorization redirect carried an unexpected state")})
		case q.Get("code") == "":
			http.Error(w, "no code received", http.StatusBadRequest)
			deliver(results, callbackResult{err: errors.New("authorization redirect carried no code")})
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, callbackPage)
			deliver(results, callbackResult{code: q.Get("code")})
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			deliver(results, callbackResult{err: fmt.Errorf("loopback listener failed: %w", err)})
		}
	}()
	defer server.Close()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if notify != nil {
		notify(authURL)
	}

	timer := time.NewTimer(connectTimeout)
	defer timer.Stop()

	var code string
	select {
	case res := <-results:
		if res.err != nil {
			return "", res.err
		}
		code = res.code
	case <-timer.C:
		return "", fmt.Errorf("authorization timed out after %s", connectTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}

	refresh := token.RefreshToken
	if refresh == "" {
		// Re-consent sometimes omits the refresh token; keep the one we have.
		stored, loadErr := m.credentials.Load()
		if loadErr != nil || stored == "" {
			return "", errors.New("authorization response contained no refresh token")
		}
		refresh = stored
	}
	if err := m.credentials.Save(refresh); err != nil {
		return "", fmt.Errorf("persist google credential: %w", err)
	}

	email, err := m.fetchUserEmail(ctx, conf, token)
	if err != nil {
		m.logger.Warn("could not fetch account email", logging.Err(err))
		return "", nil
	}
	if m.settings != nil {
		if err := m.settings.Set(store.KeyAccountEmail, email); err != nil {
			m.logger.Warn("could not persist account email", logging.Err(err))
		}
	}
	return email, nil
}

// deliver sends a result without blocking; only the first completion wins.
func deliver(ch chan<- callbackResult, res callbackResult) {
	select {
	case ch <- res:
	default:
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
