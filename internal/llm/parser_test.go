// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"testing"

	"github.com/specter-re/specter/internal/core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "json fence",
			text: "Here is the plan:\n```json\n{\"a\": 1}\n```\nDone.",
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "plain fence",
			text: "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "bare braces",
			text: `The answer is {"a": 1} as requested`,
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "no json",
			text: "I cannot help with that",
			ok:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSON(tc.text)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestParseTaskPlan(t *testing.T) {
	text := "```json\n" + `{
  "task_type": "pattern_search",
  "description": "scan for the value",
  "subtasks": [
    {"id": 1, "description": "scan", "tools": ["scan_all"], "expected_output": "hits", "dependencies": []}
  ]
}` + "\n```"

	plan, err := ParseTaskPlan(text)
	require.NoError(t, err)
	assert.Equal(t, models.TaskTypePatternSearch, plan.TaskType)
	require.Len(t, plan.SubTasks, 1)
	assert.Equal(t, 1, plan.EstimatedSteps, "estimated steps default to the subtask count")

	_, err = ParseTaskPlan(`{"task_type": "pattern_search", "subtasks": []}`)
	assert.Error(t, err, "a plan without subtasks is rejected")

	_, err = ParseTaskPlan("no structure here")
	assert.Error(t, err)
}

func TestParseDecision(t *testing.T) {
	decision, err := ParseDecision(`{"action": "recover", "reason": "loop", "confidence": 0.5}`)
	require.NoError(t, err)
	assert.Equal(t, models.ActionRecover, decision.Action)

	_, err = ParseDecision(`{"action": "self_destruct", "reason": "nope"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown decision action")
}

func TestParseResultAnalysis(t *testing.T) {
	analysis, err := ParseResultAnalysis(`{"success": true, "findings": [{"type": "success", "message": "found it"}], "confidence": 0.9}`)
	require.NoError(t, err)
	assert.True(t, analysis.Success)
	assert.Equal(t, 0.9, analysis.Confidence)

	_, err = ParseResultAnalysis(`{"success": true, "confidence": 3.5}`)
	assert.Error(t, err, "confidence outside [0,1] is rejected")
}
