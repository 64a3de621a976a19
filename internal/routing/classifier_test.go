package routing

import "testing"

func testAllowlist() Allowlist {
	return Allowlist{
		Version: 1,
		Entrypoints: map[string]Entrypoint{
			"server": {Routes: []Route{
				{Path: "/", Methods: []string{"GET"}, RouteClass: "ui"},
				{Path: "/search", Methods: []string{"get"}, RouteClass: "internal_api"},
				{Path: "/lang/{lang}", Methods: []string{"GET"}, RouteClass: "ui"},
				{Path: "/health", Methods: []string{"GET"}, RouteClass: "ops"},
			}},
		},
	}
}

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(testAllowlist(), "server")
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]RouteClass{
		"/":            RouteClassUI,
		"/search":      RouteClassInternalAPI,
		"/lang/vi":     RouteClassUI,
		"/health":      RouteClassOps,
		"/healthz":     RouteClassOps,
		"/metrics":     RouteClassOps,
		"/assets":      RouteClassStatic,
		"/static/a.js": RouteClassStatic,
		"/staticx":     RouteClassUI,
		"/unknown":     RouteClassUI,
	}
	for path, want := range cases {
		if got := c.Classify(path); got != want {
			t.Fatalf("%s: got=%q want %q", path, got, want)
		}
	}
}

func TestClassifier_Allowed(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(testAllowlist(), "server")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Allowed("GET", "/search") || c.Allowed("POST", "/search") {
		t.Fatal("search methods")
	}
	if !c.Allowed("get", "/lang/en") {
		t.Fatal("pattern route")
	}
	for _, p := range []string{"/lang", "/lang/", "/lang/en/x"} {
		if c.Allowed("GET", p) {
			t.Fatalf("%s must not match /lang/{lang}", p)
		}
	}
}

func TestNewClassifier_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewClassifier(testAllowlist(), "missing"); err == nil {
		t.Fatal("expected missing entrypoint error")
	}
	empty := Allowlist{Version: 1, Entrypoints: map[string]Entrypoint{"server": {}}}
	if _, err := NewClassifier(empty, "server"); err == nil {
		t.Fatal("expected empty routes error")
	}
	for _, r := range []Route{
		{Path: "", RouteClass: "ui"},
		{Path: "nolead", RouteClass: "ui"},
		{Path: "/x", RouteClass: ""},
		{Path: "/x/{", RouteClass: "ui"},
		{Path: "/x//y/{id}", RouteClass: "ui"},
	} {
		a := Allowlist{Version: 1, Entrypoints: map[string]Entrypoint{"server": {Routes: []Route{r}}}}
		if _, err := NewClassifier(a, "server"); err == nil {
			t.Fatalf("expected error for %+v", r)
		}
	}
}
