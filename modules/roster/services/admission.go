package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/jacksonlee411/unit-roster/modules/roster/domain/types"
)

// AdmissionRule is an optional CEL predicate every uploaded record must
// satisfy, e.g. `has(record.don_vi) && record.don_vi != ""`. The record is
// bound as `record`.
type AdmissionRule struct {
	expr string
	prg  cel.Program
}

var newAdmissionCELEnv = func() (*cel.Env, error) {
	return cel.NewEnv(cel.Variable("record", cel.MapType(cel.StringType, cel.DynType)))
}

// NewAdmissionRule compiles expr. A blank expr yields a nil rule, which admits
// everything.
func NewAdmissionRule(expr string) (*AdmissionRule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	env, err := newAdmissionCELEnv()
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("admission rule: %w", iss.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("admission rule: must evaluate to bool, got %s", out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("admission rule: %w", err)
	}
	return &AdmissionRule{expr: expr, prg: prg}, nil
}

func (a *AdmissionRule) String() string {
	if a == nil {
		return ""
	}
	return a.expr
}

func (a *AdmissionRule) Admit(r types.Record) (bool, error) {
	if a == nil {
		return true, nil
	}
	m, err := r.ToMap()
	if err != nil {
		return false, err
	}
	val, _, err := a.prg.Eval(map[string]any{"record": m})
	if err != nil {
		return false, err
	}
	ok, isBool := val.Value().(bool)
	if !isBool {
		return false, errors.New("admission rule: non-bool result")
	}
	return ok, nil
}
