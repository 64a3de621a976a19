package routing

import (
	"errors"
	"strings"
)

type RouteClass string

const (
	RouteClassUI          RouteClass = "ui"
	RouteClassInternalAPI RouteClass = "internal_api"
	RouteClassOps         RouteClass = "ops"
	RouteClassStatic      RouteClass = "static"
)

// Classifier maps request paths to route classes. Allowlisted paths win;
// anything else falls back to a prefix convention.
type Classifier struct {
	entrypoint string
	exact      map[string]allowed
	patterns   []patternRoute
}

type allowed struct {
	rc      RouteClass
	methods map[string]bool
}

type patternRoute struct {
	segments []string
	allowed
}

func NewClassifier(a Allowlist, entrypoint string) (*Classifier, error) {
	ep, ok := a.Entrypoints[entrypoint]
	if !ok {
		return nil, errors.New("allowlist: missing entrypoint")
	}
	if len(ep.Routes) == 0 {
		return nil, errors.New("allowlist: entrypoint routes empty")
	}

	c := &Classifier{entrypoint: entrypoint, exact: make(map[string]allowed, len(ep.Routes))}
	for _, r := range ep.Routes {
		if r.Path == "" || r.RouteClass == "" || r.Path[0] != '/' {
			return nil, errors.New("allowlist: invalid route")
		}
		al := allowed{rc: RouteClass(r.RouteClass), methods: make(map[string]bool, len(r.Methods))}
		for _, m := range r.Methods {
			al.methods[strings.ToUpper(m)] = true
		}
		if strings.Contains(r.Path, "{") {
			segs, ok := parsePattern(r.Path)
			if !ok {
				return nil, errors.New("allowlist: invalid path pattern " + r.Path)
			}
			c.patterns = append(c.patterns, patternRoute{segments: segs, allowed: al})
			continue
		}
		c.exact[r.Path] = al
	}
	return c, nil
}

func (c *Classifier) lookup(path string) (allowed, bool) {
	if al, ok := c.exact[path]; ok {
		return al, true
	}
	for _, p := range c.patterns {
		if matchPattern(p.segments, path) {
			return p.allowed, true
		}
	}
	return allowed{}, false
}

func (c *Classifier) Classify(path string) RouteClass {
	if al, ok := c.lookup(path); ok {
		return al.rc
	}
	switch {
	case path == "/metrics" || path == "/health" || path == "/healthz":
		return RouteClassOps
	case hasPrefixSegment(path, "/assets") || hasPrefixSegment(path, "/static"):
		return RouteClassStatic
	default:
		return RouteClassUI
	}
}

// Allowed reports whether method on path is listed for this entrypoint.
func (c *Classifier) Allowed(method string, path string) bool {
	al, ok := c.lookup(path)
	return ok && al.methods[strings.ToUpper(method)]
}

func hasPrefixSegment(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func splitSegments(path string) []string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func isParam(s string) bool {
	return len(s) > 2 && strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

func parsePattern(raw string) ([]string, bool) {
	segs := splitSegments(raw)
	for _, s := range segs {
		if s == "" {
			return nil, false
		}
		if strings.ContainsAny(s, "{}") && !isParam(s) {
			return nil, false
		}
	}
	return segs, true
}

func matchPattern(segments []string, path string) bool {
	in := splitSegments(path)
	if len(in) != len(segments) {
		return false
	}
	for i, want := range segments {
		if in[i] == "" {
			return false
		}
		if !isParam(want) && in[i] != want {
			return false
		}
	}
	return true
}
