package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestIDReusesIncomingHeader(t *testing.T) {
	const incoming = "req-abc-001"
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", incoming)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != incoming {
		t.Fatalf("context request id = %q, want %q", seen, incoming)
	}
	if got := rec.Header().Get("X-Request-Id"); got != incoming {
		t.Fatalf("response request id = %q, want %q", got, incoming)
	}
}

func TestWithRequestIDGeneratesWhenMissing(t *testing.T) {
	handler := WithRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		if RequestIDFromRequest(r) == "" {
			t.Fatal("expected a generated request id in context")
		}
		if LoggerFromContext(r.Context()) == nil {
			t.Fatal("expected a context logger")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a generated request id header")
	}
}
