package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type observedHTTP struct {
	route  string
	method string
	status int
}

type fakeHTTPObserver struct{ got []observedHTTP }

func (f *fakeHTTPObserver) ObserveHTTP(route string, method string, status int, _ time.Duration) {
	f.got = append(f.got, observedHTTP{route: route, method: method, status: status})
}

func TestWithAccessLog(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	obs := &fakeHTTPObserver{}
	h := withAccessLog(zap.New(core), obs, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if len(obs.got) != 2 || obs.got[0] != (observedHTTP{route: "unmatched", method: "GET", status: 200}) {
		t.Fatalf("observed=%+v", obs.got)
	}
	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("health checks must not be access logged: %d entries", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/x" || fields["status"] != int64(200) || fields["bytes"] != int64(5) {
		t.Fatalf("fields=%v", fields)
	}
}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	t.Parallel()

	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.WriteHeader(http.StatusFound)
	rec.WriteHeader(http.StatusOK)
	if rec.status != http.StatusFound {
		t.Fatalf("status=%d", rec.status)
	}
}
