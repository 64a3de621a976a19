package unitscope

import (
	"strings"

	"github.com/jacksonlee411/unit-roster/modules/roster/domain/types"
)

// PrefixWidth is the fixed width of an organizational prefix in unit codes.
const PrefixWidth = 14

// Normalize trims surrounding whitespace from a submitted scope.
func Normalize(input string) string {
	return strings.TrimSpace(input)
}

// Prefix returns the first PrefixWidth characters of scope. Only the scope is
// truncated; codes are matched against it as-is.
func Prefix(scope string) string {
	runes := []rune(scope)
	if len(runes) <= PrefixWidth {
		return scope
	}
	return string(runes[:PrefixWidth])
}

// Contains reports whether code falls under scope. The empty scope contains
// every code.
func Contains(scope string, code string) bool {
	if scope == "" {
		return true
	}
	return strings.HasPrefix(code, Prefix(scope))
}

// Filter restricts mapping to the codes under scope, keeping mapping order.
func Filter(mapping types.UnitMapping, scope string) types.UnitMapping {
	if scope == "" {
		return mapping
	}
	return mapping.Filter(func(code string) bool { return Contains(scope, code) })
}
