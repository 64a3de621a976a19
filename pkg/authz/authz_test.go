package authz

import (
	"os"
	"path/filepath"
	"testing"
)

const testModel = `
[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.dom == p.dom && r.obj == p.obj && r.act == p.act
`

const testPolicy = `p, role:viewer, global, roster.records, read
p, role:viewer, global, roster.dataset, read
p, role:editor, global, roster.records, write
p, role:editor, global, roster.dataset, write
g, role:editor, role:viewer, global
`

func writeModelAndPolicy(t *testing.T, model string, policy string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.conf")
	policyPath := filepath.Join(dir, "policy.csv")
	if err := os.WriteFile(modelPath, []byte(model), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(policyPath, []byte(policy), 0o644); err != nil {
		t.Fatal(err)
	}
	return modelPath, policyPath
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw           string
		allowDisabled bool
		want          Mode
		wantErr       bool
	}{
		{raw: "", want: ModeShadow},
		{raw: " Enforce ", want: ModeEnforce},
		{raw: "shadow", want: ModeShadow},
		{raw: "disabled", wantErr: true},
		{raw: "disabled", allowDisabled: true, want: ModeDisabled},
		{raw: "nope", wantErr: true},
	}
	for _, tc := range cases {
		m, err := ParseMode(tc.raw, tc.allowDisabled)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("raw=%q expected error", tc.raw)
			}
			continue
		}
		if err != nil || m != tc.want {
			t.Fatalf("raw=%q mode=%q err=%v", tc.raw, m, err)
		}
	}
}

func TestNewAuthorizer_AndAuthorize(t *testing.T) {
	model, policy := writeModelAndPolicy(t, testModel, testPolicy)

	a, err := NewAuthorizer(model, policy, ModeEnforce)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if a.Mode() != ModeEnforce {
		t.Fatalf("mode=%q", a.Mode())
	}

	allowed, enforced, err := a.Authorize(SubjectFromRole(RoleEditor), DomainGlobal, ObjectRosterRecords, ActionRead)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !enforced || !allowed {
		t.Fatalf("editor inherits viewer: allowed=%v enforced=%v", allowed, enforced)
	}

	allowed, enforced, err = a.Authorize(SubjectFromRole(RoleViewer), DomainGlobal, ObjectRosterRecords, ActionWrite)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !enforced || allowed {
		t.Fatalf("allowed=%v enforced=%v", allowed, enforced)
	}

	aShadow, err := NewAuthorizer(model, policy, ModeShadow)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	allowed, enforced, err = aShadow.Authorize(SubjectFromRole(""), DomainGlobal, ObjectRosterDataset, ActionRead)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if enforced || allowed {
		t.Fatalf("allowed=%v enforced=%v", allowed, enforced)
	}

	aDisabled, err := NewAuthorizer(model, policy, ModeDisabled)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	allowed, enforced, err = aDisabled.Authorize(SubjectFromRole(RoleAnonymous), DomainGlobal, ObjectRosterDataset, ActionWrite)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if enforced || !allowed {
		t.Fatalf("allowed=%v enforced=%v", allowed, enforced)
	}
}

func TestNewAuthorizer_Error(t *testing.T) {
	dir := t.TempDir()
	invalidModel := filepath.Join(dir, "invalid.conf")
	if err := os.WriteFile(invalidModel, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewAuthorizer(invalidModel, "nope-policy.csv", ModeEnforce); err == nil {
		t.Fatal("expected error")
	}

	model, _ := writeModelAndPolicy(t, testModel, testPolicy)
	policyDir := filepath.Join(dir, "policy-dir")
	if err := os.MkdirAll(policyDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := NewAuthorizer(model, policyDir, ModeEnforce); err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewAuthorizer(model, filepath.Join(dir, "missing-policy.csv"), ModeEnforce); err == nil {
		t.Fatal("expected error")
	}
}

func TestSubjectFromRole(t *testing.T) {
	if got := SubjectFromRole(""); got != "role:anonymous" {
		t.Fatalf("got=%q", got)
	}
	if got := SubjectFromRole(" Editor "); got != "role:editor" {
		t.Fatalf("got=%q", got)
	}
}

func TestAuthorize_UnknownMode(t *testing.T) {
	a := &Authorizer{mode: Mode("nope")}
	if _, _, err := a.Authorize("role:x", "d", "o", "a"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAuthorize_EnforceError(t *testing.T) {
	model, policy := writeModelAndPolicy(t, `
[request_definition]
r = sub, dom, obj, act
[policy_definition]
p = sub, dom, obj, act
[policy_effect]
e = some(where (p.eft == allow))
[matchers]
m = r.sub == 
`, "p, role:viewer, global, roster.records, read\n")

	aShadow, err := NewAuthorizer(model, policy, ModeShadow)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	allowed, enforced, err := aShadow.Authorize("role:viewer", DomainGlobal, ObjectRosterRecords, ActionRead)
	if err == nil {
		t.Fatal("expected error")
	}
	if allowed || enforced {
		t.Fatalf("allowed=%v enforced=%v", allowed, enforced)
	}

	aEnforce, err := NewAuthorizer(model, policy, ModeEnforce)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	allowed, enforced, err = aEnforce.Authorize("role:viewer", DomainGlobal, ObjectRosterRecords, ActionRead)
	if err == nil {
		t.Fatal("expected error")
	}
	if allowed || !enforced {
		t.Fatalf("allowed=%v enforced=%v", allowed, enforced)
	}
}
