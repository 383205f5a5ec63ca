package domain

import (
	"fmt"
	"strings"
)

// EvaluateCondition evaluates a connection or branch condition against
// the current data. Supported forms:
//
//	""            always true
//	"key"         true when data[key] is present and truthy
//	"key==value"  string comparison against fmt.Sprint(data[key])
//	"key!=value"  negated comparison
//
// Richer expressions are the responsibility of the condition-evaluation
// hook configured on the engine.
func EvaluateCondition(expr string, data map[string]interface{}) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true
	}

	if i := strings.Index(expr, "!="); i >= 0 {
		key, want := strings.TrimSpace(expr[:i]), strings.TrimSpace(expr[i+2:])
		v, ok := data[key]
		return !ok || fmt.Sprint(v) != want
	}
	if i := strings.Index(expr, "=="); i >= 0 {
		key, want := strings.TrimSpace(expr[:i]), strings.TrimSpace(expr[i+2:])
		v, ok := data[key]
		return ok && fmt.Sprint(v) == want
	}

	v, ok := data[expr]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	case nil:
		return false
	default:
		return true
	}
}
