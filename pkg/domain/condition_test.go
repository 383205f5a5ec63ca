package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCondition(t *testing.T) {
	data := map[string]interface{}{
		"mode":  "fast",
		"ready": true,
		"off":   false,
		"empty": "",
		"count": 3,
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"ready", true},
		{"off", false},
		{"empty", false},
		{"count", true},
		{"missing", false},
		{"mode==fast", true},
		{"mode==slow", false},
		{"mode == fast", true},
		{"mode!=slow", true},
		{"mode!=fast", false},
		{"missing!=x", true},
		{"missing==x", false},
		{"count==3", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EvaluateCondition(tt.expr, data), "expr %q", tt.expr)
	}
}
