package services

import (
	"testing"
)

func TestNewAdmissionRule_BlankIsNil(t *testing.T) {
	t.Parallel()

	rule, err := NewAdmissionRule("   ")
	if err != nil || rule != nil {
		t.Fatalf("rule=%v err=%v", rule, err)
	}
	ok, err := rule.Admit(mustRecord(t, `{}`))
	if err != nil || !ok {
		t.Fatalf("nil rule must admit: ok=%v err=%v", ok, err)
	}
	if rule.String() != "" {
		t.Fatalf("String=%q", rule.String())
	}
}

func TestNewAdmissionRule_CompileErrors(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{
		`record.don_vi ==`,
		`1 + 2`,
		`unknown_var == 1`,
	} {
		if _, err := NewAdmissionRule(expr); err == nil {
			t.Fatalf("expected error for %q", expr)
		}
	}
}

func TestAdmissionRule_Admit(t *testing.T) {
	t.Parallel()

	rule, err := NewAdmissionRule(`has(record.So_HSQ_BS) || has(record.So_CMSQ_CMQNCN_CMCCQP)`)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		in   string
		want bool
	}{
		{in: `{"So_HSQ_BS":"1"}`, want: true},
		{in: `{"So_CMSQ_CMQNCN_CMCCQP":"2","personal_info":{"ho_chu_dem_ten":"A"}}`, want: true},
		{in: `{"don_vi":"A1"}`, want: false},
	}
	for _, tc := range cases {
		got, err := rule.Admit(mustRecord(t, tc.in))
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%s: admit=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestAdmissionRule_NestedAndNumeric(t *testing.T) {
	t.Parallel()

	rule, err := NewAdmissionRule(`record.personal_info.age >= 18.0`)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := rule.Admit(mustRecord(t, `{"personal_info":{"age":20}}`))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if _, err := rule.Admit(mustRecord(t, `{}`)); err == nil {
		t.Fatal("expected evaluation error for missing key")
	}
}

func TestAdmissionRule_NonBoolResult(t *testing.T) {
	t.Parallel()

	rule, err := NewAdmissionRule(`record.flag`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rule.Admit(mustRecord(t, `{"flag":"yes"}`)); err == nil {
		t.Fatal("expected non-bool error")
	}
	ok, err := rule.Admit(mustRecord(t, `{"flag":true}`))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}
