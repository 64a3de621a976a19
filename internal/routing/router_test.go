package routing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(t *testing.T) (*Router, *observer.ObservedLogs) {
	t.Helper()
	c, err := NewClassifier(testAllowlist(), "server")
	if err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zap.ErrorLevel)
	return NewRouter(c, zap.New(core)), logs
}

func TestRouter_PanicBecomes500JSON(t *testing.T) {
	t.Parallel()

	r, logs := newTestRouter(t)
	r.Handle(RouteClassInternalAPI, http.MethodGet, "/search", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
	if logs.FilterMessage("handler panic").Len() != 1 {
		t.Fatalf("logs=%v", logs.All())
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	r.Handle(RouteClassUI, http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rec.Code)
	}
	if rec.Header().Get("Allow") != "GET, HEAD" {
		t.Fatalf("allow=%q", rec.Header().Get("Allow"))
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}

	head := httptest.NewRecorder()
	r.ServeHTTP(head, httptest.NewRequest(http.MethodHead, "/", nil))
	if head.Code != http.StatusOK {
		t.Fatalf("head status=%d", head.Code)
	}
}

func TestRouter_NotFoundAndRouteSlot(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	var seen string
	r.Handle(RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		seen = RouteFromContext(req.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = req.WithContext(WithRouteSlot(req.Context()))
	r.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "/health" {
		t.Fatalf("route=%q", seen)
	}

	miss := httptest.NewRequest(http.MethodGet, "/nope", nil)
	miss = miss.WithContext(WithRouteSlot(miss.Context()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, miss)
	if rec.Code != http.StatusNotFound || RouteFromContext(miss.Context()) != "unmatched" {
		t.Fatalf("status=%d route=%q", rec.Code, RouteFromContext(miss.Context()))
	}
}

func TestRouter_Unlisted(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	r.Handle(RouteClassUI, http.MethodGet, "/", noop)
	r.Handle(RouteClassUI, http.MethodPost, "/", noop)
	r.Handle(RouteClassUI, http.MethodGet, "/secret", noop)

	if diff := cmp.Diff([]string{"GET /secret", "POST /"}, r.Unlisted()); diff != "" {
		t.Fatalf("unlisted (-want +got):\n%s", diff)
	}
}

func TestEntrypointClass_Fallback(t *testing.T) {
	t.Parallel()

	if got := entrypointClass(map[string]routeEntry{}, RouteClassUI); got != RouteClassUI {
		t.Fatalf("got=%q", got)
	}
}
