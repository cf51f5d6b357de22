package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "pull_events")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithCalendar(t *testing.T) {
	logger := slog.Default()
	result := WithCalendar(logger, "primary")
	if result == nil {
		t.Error("WithCalendar returned nil")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != StatusSuccess {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), StatusSuccess)
	}
}

func TestEventIDAttr(t *testing.T) {
	attr := EventID("evt123")
	if attr.Key != KeyEventID {
		t.Errorf("EventID key = %q, want %q", attr.Key, KeyEventID)
	}
	if attr.Value.String() != "evt123" {
		t.Errorf("EventID value = %q, want %q", attr.Value.String(), "evt123")
	}
}

func TestErrAttr(t *testing.T) {
	err := errors.New("remote unavailable")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "remote unavailable" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "remote unavailable")
	}
}

func TestErrAttrNil(t *testing.T) {
	attr := Err(nil)
	// A nil error should produce an empty group that slog omits.
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", attr.Key)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty token", "", "<empty>"},
		{"short token", "abc", "[token:3 chars]"},
		{"refresh token", strings.Repeat("x", 103), "[token:103 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeToken(tt.token)
			if got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
			if tt.token != "" && strings.Contains(got, tt.token) {
				t.Error("SanitizeToken leaked token content")
			}
		})
	}
}
