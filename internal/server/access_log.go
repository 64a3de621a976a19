package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/internal/routing"
)

type httpObserver interface {
	ObserveHTTP(route string, method string, status int, d time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func withAccessLog(logger *zap.Logger, metrics httpObserver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		r = r.WithContext(routing.WithRouteSlot(r.Context()))

		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		route := routing.RouteFromContext(r.Context())
		if metrics != nil {
			metrics.ObserveHTTP(route, r.Method, status, d)
		}
		if r.URL.Path == "/metrics" || r.URL.Path == "/health" || r.URL.Path == "/healthz" {
			return
		}
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", d),
			zap.String("request_id", RequestIDFromContext(r.Context())),
		)
	})
}
