package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIPTrustRules(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8", "192.168.1.10"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		trusted    *TrustedProxies
		want       string
	}{
		{
			name:       "untrusted peer ignores forwarded headers",
			remoteAddr: "198.51.100.10:1234",
			forwarded:  "203.0.113.5",
			realIP:     "203.0.113.6",
			want:       "198.51.100.10",
		},
		{
			name:       "trusted peer honors x-forwarded-for",
			remoteAddr: "10.0.0.20:1234",
			forwarded:  "203.0.113.5",
			trusted:    trusted,
			want:       "203.0.113.5",
		},
		{
			name:       "chain walked to first untrusted hop",
			remoteAddr: "10.0.0.20:1234",
			forwarded:  "203.0.113.5, 10.0.0.10",
			trusted:    trusted,
			want:       "203.0.113.5",
		},
		{
			name:       "x-real-ip fallback when forwarded header unusable",
			remoteAddr: "10.0.0.20:1234",
			forwarded:  "invalid",
			realIP:     "203.0.113.7",
			trusted:    trusted,
			want:       "203.0.113.7",
		},
		{
			name:       "fully trusted chain returns leftmost hop",
			remoteAddr: "10.0.0.20:1234",
			forwarded:  "10.0.0.5, 10.0.0.10",
			trusted:    trusted,
			want:       "10.0.0.5",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			if got := ClientIP(req, tc.trusted); got != tc.want {
				t.Fatalf("client ip = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewTrustedProxiesValidation(t *testing.T) {
	if _, err := NewTrustedProxies([]string{"10.0.0.0/8", "192.168.1.1"}); err != nil {
		t.Fatalf("valid entries rejected: %v", err)
	}
	if _, err := NewTrustedProxies([]string{"not-an-ip"}); err == nil {
		t.Fatal("expected parse error for invalid entry")
	}
	trusted, err := NewTrustedProxies(nil)
	if err != nil {
		t.Fatalf("empty list: %v", err)
	}
	if trusted != nil {
		t.Fatal("empty list should yield nil allowlist")
	}
}
