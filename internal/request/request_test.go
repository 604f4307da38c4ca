package request

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		xff      string
		xri      string
		remote   string
		expected string
	}{
		{"x-forwarded-for single", "10.0.0.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"x-forwarded-for chain uses first", "10.0.0.1, 10.0.0.2", "", "192.168.1.1:1234", "10.0.0.1"},
		{"x-real-ip fallback", "", "10.0.0.3", "192.168.1.1:1234", "10.0.0.3"},
		{"remote addr fallback", "", "", "192.168.1.1:1234", "192.168.1.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.expected {
				t.Errorf("ClientIP() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestCallerContext(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)

	if _, ok := CallerFromContext(r); ok {
		t.Fatal("expected no caller on a bare request")
	}

	callerID := uuid.New()
	r = r.WithContext(WithCaller(r.Context(), callerID))

	got, ok := CallerFromContext(r)
	if !ok {
		t.Fatal("expected caller to be present")
	}
	if got != callerID {
		t.Errorf("CallerFromContext() = %s, expected %s", got, callerID)
	}
}
