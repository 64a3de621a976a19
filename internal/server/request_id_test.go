package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestWithRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := withRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	cases := []struct {
		name   string
		header map[string]string
		check  func(string) bool
	}{
		{
			name:   "traceparent",
			header: map[string]string{"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", RequestIDHeader: "other"},
			check:  func(id string) bool { return id == "4bf92f3577b34da6a3ce929d0e0e4736" },
		},
		{
			name:   "inbound",
			header: map[string]string{RequestIDHeader: " req-123 "},
			check:  func(id string) bool { return id == "req-123" },
		},
		{
			name:   "invalid inbound",
			header: map[string]string{RequestIDHeader: "has space"},
			check: func(id string) bool {
				u, err := uuid.Parse(id)
				return err == nil && u.Version() == 7
			},
		},
		{
			name:   "too long",
			header: map[string]string{RequestIDHeader: strings.Repeat("a", 129)},
			check: func(id string) bool {
				u, err := uuid.Parse(id)
				return err == nil && u.Version() == 7
			},
		},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range tc.header {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if !tc.check(seen) || rec.Header().Get(RequestIDHeader) != seen {
			t.Fatalf("%s: id=%q header=%q", tc.name, seen, rec.Header().Get(RequestIDHeader))
		}
	}
}
