package routing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAllowlistYAML_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"yaml":           "\xff",
		"version":        "version: 2\nentrypoints: {}",
		"no entrypoints": "version: 1",
		"method":         "version: 1\nentrypoints:\n  server:\n    routes:\n      - path: /\n        methods: [FETCH]\n        route_class: ui\n",
	}
	for name, doc := range cases {
		if _, err := ParseAllowlistYAML([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadAllowlist_RepoFile(t *testing.T) {
	t.Parallel()

	a, err := LoadAllowlist(filepath.Join("..", "..", DefaultAllowlistPath))
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClassifier(a, "server")
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		method, path string
		want         RouteClass
	}{
		{"GET", "/", RouteClassUI},
		{"POST", "/upload", RouteClassUI},
		{"GET", "/search", RouteClassInternalAPI},
		{"POST", "/bulk_update", RouteClassUI},
		{"GET", "/lang/en", RouteClassUI},
		{"GET", "/metrics", RouteClassOps},
	} {
		if !c.Allowed(tc.method, tc.path) {
			t.Fatalf("%s %s not allowed", tc.method, tc.path)
		}
		if got := c.Classify(tc.path); got != tc.want {
			t.Fatalf("%s: got=%q want %q", tc.path, got, tc.want)
		}
	}
	if c.Allowed("GET", "/update") {
		t.Fatal("update is POST only")
	}
}

func TestLoadAllowlist_Missing(t *testing.T) {
	t.Parallel()

	if _, err := LoadAllowlist(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("err=%v", err)
	}
}
