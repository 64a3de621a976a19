package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jacksonlee411/unit-roster/internal/routing"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID prefers the W3C trace id, then a sane inbound X-Request-ID,
// then a fresh UUIDv7. The chosen id is echoed in the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := routing.TraceIDFromRequest(r)
		if id == "" {
			id = sanitizeRequestID(r.Header.Get(RequestIDHeader))
		}
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func sanitizeRequestID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 128 {
		return ""
	}
	for _, ch := range raw {
		if ch < 0x21 || ch > 0x7e {
			return ""
		}
	}
	return raw
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
