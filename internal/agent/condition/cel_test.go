// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	evaluator, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{"intent match", `intent == "debug"`, true},
		{"intent mismatch", `intent == "search"`, false},
		{"request substring", `request.contains("breakpoint")`, true},
		{"task type", `task_type == "breakpoint_debugging"`, true},
		{"combined", `intent == "debug" && task_type != "pattern_search"`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := evaluator.Evaluate(tc.expression, "set a breakpoint on the handler", "debug", "breakpoint_debugging")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	evaluator, err := NewEvaluator()
	require.NoError(t, err)

	_, err = evaluator.Evaluate("not valid CEL ===", "r", "i", "t")
	assert.Error(t, err)

	_, err = evaluator.Evaluate(`unknown_var == "x"`, "r", "i", "t")
	assert.Error(t, err, "undeclared variables fail type-checking")

	_, err = evaluator.Evaluate(`intent`, "r", "i", "t")
	assert.Error(t, err, "non-boolean expressions are rejected")
}
