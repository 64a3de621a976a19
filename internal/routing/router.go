package routing

import (
	"context"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"

	"go.uber.org/zap"
)

type Router struct {
	classifier *Classifier
	logger     *zap.Logger
	routes     map[string]map[string]routeEntry
}

type routeEntry struct {
	rc      RouteClass
	handler http.Handler
}

type routeKey struct{}

func NewRouter(classifier *Classifier, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		classifier: classifier,
		logger:     logger,
		routes:     make(map[string]map[string]routeEntry),
	}
}

// RouteFromContext returns the registered path that served the request, or
// "unmatched". It is set before the handler runs and is safe as a metrics label.
func RouteFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(routeKey{}).(*string); ok && *p != "" {
		return *p
	}
	return "unmatched"
}

// WithRouteSlot prepares ctx so the router can report the matched route back
// to outer middleware.
func WithRouteSlot(ctx context.Context) context.Context {
	if _, ok := ctx.Value(routeKey{}).(*string); ok {
		return ctx
	}
	var s string
	return context.WithValue(ctx, routeKey{}, &s)
}

func (r *Router) Handle(rc RouteClass, method string, path string, h http.Handler) {
	if r.routes[path] == nil {
		r.routes[path] = make(map[string]routeEntry)
	}

	r.routes[path][method] = routeEntry{
		rc: rc,
		handler: http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("handler panic",
						zap.String("path", req.URL.Path),
						zap.String("method", req.Method),
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					WriteError(w, req, rc, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			h.ServeHTTP(w, req)
		}),
	}
	if method == http.MethodGet {
		if _, ok := r.routes[path][http.MethodHead]; !ok {
			r.routes[path][http.MethodHead] = r.routes[path][method]
		}
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	methods, ok := r.routes[req.URL.Path]
	if !ok {
		WriteError(w, req, r.classifier.Classify(req.URL.Path), http.StatusNotFound, "not_found", "not found")
		return
	}
	if p, ok := req.Context().Value(routeKey{}).(*string); ok {
		*p = req.URL.Path
	}
	entry, ok := methods[req.Method]
	if !ok {
		w.Header().Set("Allow", allowHeader(methods))
		WriteError(w, req, entrypointClass(methods, r.classifier.Classify(req.URL.Path)), http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	entry.handler.ServeHTTP(w, req)
}

// Unlisted returns "METHOD path" for every registered route the allowlist does
// not name. Callers treat a non-empty result as a startup error.
func (r *Router) Unlisted() []string {
	var out []string
	for path, methods := range r.routes {
		for method := range methods {
			if method == http.MethodHead {
				continue
			}
			if !r.classifier.Allowed(method, path) {
				out = append(out, method+" "+path)
			}
		}
	}
	sort.Strings(out)
	return out
}

func allowHeader(methods map[string]routeEntry) string {
	names := make([]string, 0, len(methods))
	for m := range methods {
		names = append(names, m)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func entrypointClass(methods map[string]routeEntry, fallback RouteClass) RouteClass {
	for _, e := range methods {
		return e.rc
	}
	return fallback
}
