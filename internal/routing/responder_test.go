package routing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError_JSONEnvelope(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()

	WriteError(rec, req, RouteClassInternalAPI, http.StatusInternalServerError, "internal_error", "boom")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Code != "internal_error" || env.TraceID != "4bf92f3577b34da6a3ce929d0e0e4736" || env.Meta.Path != "/search" || env.Meta.Method != "GET" {
		t.Fatalf("env=%+v", env)
	}
}

func TestWriteError_AcceptJSON(t *testing.T) {
	t.Parallel()

	for _, accept := range []string{"application/json", "application/json; charset=utf-8", "text/html, Application/JSON;q=0.9"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Accept", accept)
		rec := httptest.NewRecorder()
		WriteError(rec, req, RouteClassUI, http.StatusNotFound, "not_found", "not found")
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
			t.Fatalf("%q: content-type=%q", accept, rec.Header().Get("Content-Type"))
		}
	}
}

func TestWriteError_HTMLEscapesMessage(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	WriteError(rec, req, RouteClassUI, http.StatusBadRequest, "invalid_json", "<script>x</script>")
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>") || !strings.Contains(body, "&lt;script&gt;") {
		t.Fatalf("body=%s", body)
	}
}

func TestTraceIDFromRequest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		traceparent string
		want        string
	}{
		{name: "empty"},
		{name: "parts", traceparent: "00-abc-01"},
		{name: "short", traceparent: "00-abc-00f067aa0ba902b7-01"},
		{name: "zero", traceparent: "00-00000000000000000000000000000000-00f067aa0ba902b7-01"},
		{name: "non hex", traceparent: "00-4bf92f3577b34da6a3ce929d0e0e473z-00f067aa0ba902b7-01"},
		{name: "upper", traceparent: "00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01", want: "4bf92f3577b34da6a3ce929d0e0e4736"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.traceparent != "" {
				req.Header.Set("traceparent", tc.traceparent)
			}
			if got := TraceIDFromRequest(req); got != tc.want {
				t.Fatalf("got=%q want %q", got, tc.want)
			}
		})
	}
}
