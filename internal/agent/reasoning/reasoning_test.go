// SPDX-License-Identifier: Apache-2.0

package reasoning

import (
	"fmt"
	"testing"
	"time"

	"github.com/specter-re/specter/internal/core/models"
	"github.com/specter-re/specter/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newContext(estimatedSteps int) *models.ExecutionContext {
	return &models.ExecutionContext{
		TaskID:      "task-1",
		UserRequest: "analyze the target",
		ExecutionPlan: &models.ExecutionPlan{
			TaskID:   "task-1",
			TaskType: models.TaskTypeComprehensiveAnalysis,
			SubTasks: []models.SubTask{
				{ID: 1, Description: "discover", Tools: []string{"get_process_info"}},
				{ID: 2, Description: "analyze", Tools: []string{"disassemble", "analyze_function"}, Dependencies: []int{1}},
			},
			EstimatedSteps: estimatedSteps,
		},
		IntermediateResults: make(map[string]interface{}),
		State:               models.TaskStateRunning,
	}
}

func step(id int, tool string, success bool, errMsg string) models.ExecutionStep {
	return models.ExecutionStep{
		StepID:    id,
		ToolName:  tool,
		Timestamp: time.Now(),
		Success:   success,
		Error:     errMsg,
	}
}

func TestSubtaskCompleteHeuristic(t *testing.T) {
	subtask := &models.SubTask{
		ID:    1,
		Tools: []string{"a", "b", "c", "d"},
	}

	// Two of four distinct tools succeeded: threshold is 4/2 = 2
	history := []models.ExecutionStep{
		step(1, "a", true, ""),
		step(2, "b", true, ""),
	}
	assert.True(t, SubtaskComplete(subtask, history), "2 distinct successes out of 4 tools meets the threshold")

	// Only one succeeded
	assert.False(t, SubtaskComplete(subtask, history[:1]), "1 distinct success out of 4 tools is below the threshold")

	// Failed steps do not count
	history = append(history[:1], step(2, "b", false, "boom"))
	assert.False(t, SubtaskComplete(subtask, history))

	// Single-tool subtasks need exactly one success
	single := &models.SubTask{ID: 2, Tools: []string{"x"}}
	assert.False(t, SubtaskComplete(single, nil))
	assert.True(t, SubtaskComplete(single, []models.ExecutionStep{step(1, "x", true, "")}))
}

func TestEvaluateStateIdempotent(t *testing.T) {
	unit := New(nil, nil)

	ctx := newContext(4)
	ctx.History = []models.ExecutionStep{
		step(1, "get_process_info", true, ""),
		step(2, "disassemble", false, "bad address"),
	}

	first := unit.EvaluateState(ctx)
	second := unit.EvaluateState(ctx)

	assert.Equal(t, first.Progress, second.Progress, "evaluation must not mutate the context")
	assert.Equal(t, first.Issues, second.Issues)
	assert.InDelta(t, 0.25, first.Progress, 1e-9, "1 success over 4 estimated steps")
	require.Len(t, first.Issues, 1)
	assert.Contains(t, first.Issues[0], "bad address")
}

func TestEvaluateStateProgressCapped(t *testing.T) {
	unit := New(nil, nil)

	ctx := newContext(2)
	for i := 1; i <= 5; i++ {
		ctx.History = append(ctx.History, step(i, "get_process_info", true, ""))
	}

	evaluation := unit.EvaluateState(ctx)
	assert.Equal(t, 1.0, evaluation.Progress)
	assert.Equal(t, []string{"task appears complete, finalize results"}, evaluation.Recommendations)
	assert.False(t, evaluation.Success, "a finished task is no longer in-flight")
}

func TestStuckLoopDetection(t *testing.T) {
	unit := New(nil, nil)

	ctx := newContext(10)
	for i := 1; i <= 5; i++ {
		ctx.History = append(ctx.History, step(i, "disassemble", false, "bad address"))
	}

	evaluation := unit.EvaluateState(ctx)
	require.NotEmpty(t, evaluation.Issues)
	assert.Contains(t, evaluation.Issues[len(evaluation.Issues)-1], "stuck in error loop")

	decision := unit.MakeDecision(evaluation, ctx)
	assert.Equal(t, models.ActionRecover, decision.Action)
	assert.Equal(t, 0.5, decision.Confidence)
}

func TestNoStuckLoopWithShortHistory(t *testing.T) {
	unit := New(nil, nil)

	ctx := newContext(10)
	for i := 1; i <= 4; i++ {
		ctx.History = append(ctx.History, step(i, "disassemble", false, "bad address"))
	}

	evaluation := unit.EvaluateState(ctx)
	for _, issue := range evaluation.Issues {
		assert.NotContains(t, issue, "stuck in error loop", "four failures are not yet a loop")
	}
}

func TestDecisionTable(t *testing.T) {
	unit := New(nil, nil)
	ctx := newContext(4)

	tests := []struct {
		name       string
		evaluation models.StateEvaluation
		action     models.DecisionAction
	}{
		{
			name:       "completed state finalizes",
			evaluation: models.StateEvaluation{CurrentState: models.TaskStateCompleted, Progress: 0.5},
			action:     models.ActionFinalize,
		},
		{
			name:       "failed state aborts",
			evaluation: models.StateEvaluation{CurrentState: models.TaskStateFailed, Progress: 0.5},
			action:     models.ActionAbort,
		},
		{
			name: "plain issues adjust",
			evaluation: models.StateEvaluation{
				CurrentState:    models.TaskStateRunning,
				Progress:        0.5,
				Issues:          []string{"recent error in step 2: bad address"},
				Recommendations: []string{"address identified issues before proceeding"},
			},
			action: models.ActionAdjust,
		},
		{
			name:       "full progress finalizes",
			evaluation: models.StateEvaluation{CurrentState: models.TaskStateRunning, Progress: 1.0},
			action:     models.ActionFinalize,
		},
		{
			name:       "otherwise continue",
			evaluation: models.StateEvaluation{CurrentState: models.TaskStateRunning, Progress: 0.5},
			action:     models.ActionContinue,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := unit.MakeDecision(tc.evaluation, ctx)
			assert.Equal(t, tc.action, decision.Action)
		})
	}
}

func TestDecisionConfidence(t *testing.T) {
	unit := New(nil, nil)
	ctx := newContext(4)

	// Adjust carries a fixed confidence and recommendations as next steps
	adjust := unit.MakeDecision(models.StateEvaluation{
		CurrentState:    models.TaskStateRunning,
		Progress:        0.9,
		Issues:          []string{"recent error in step 1: boom"},
		Recommendations: []string{"address identified issues before proceeding"},
	}, ctx)
	assert.Equal(t, 0.7, adjust.Confidence)
	assert.Equal(t, []string{"address identified issues before proceeding"}, adjust.NextSteps)

	// Progress-derived confidence is penalized when issues exist
	abort := unit.MakeDecision(models.StateEvaluation{
		CurrentState: models.TaskStateFailed,
		Progress:     1.0,
		Issues:       []string{"recent error in step 1: boom"},
	}, ctx)
	assert.InDelta(t, 0.7, abort.Confidence, 1e-9)

	// No issues: confidence equals progress
	cont := unit.MakeDecision(models.StateEvaluation{
		CurrentState: models.TaskStateRunning,
		Progress:     0.5,
	}, ctx)
	assert.Equal(t, 0.5, cont.Confidence)
}

func TestAdjustPlanStateTransitions(t *testing.T) {
	unit := New(nil, nil)

	ctx := newContext(4)
	unit.AdjustPlan(models.Decision{Action: models.ActionFinalize}, ctx)
	assert.Equal(t, models.TaskStateCompleted, ctx.State)

	ctx = newContext(4)
	unit.AdjustPlan(models.Decision{Action: models.ActionAbort}, ctx)
	assert.Equal(t, models.TaskStateFailed, ctx.State)

	ctx = newContext(4)
	unit.AdjustPlan(models.Decision{Action: models.ActionContinue}, ctx)
	assert.Equal(t, models.TaskStateRunning, ctx.State, "continue leaves the state alone")

	unit.AdjustPlan(models.Decision{Action: models.ActionRecover}, ctx)
	assert.Equal(t, models.TaskStateRunning, ctx.State, "recovery hook is informational only")
}

func TestRecoverFromErrorClassification(t *testing.T) {
	unit := New(nil, nil)
	ctx := newContext(4)
	ctx.CurrentStep = 1

	tests := []struct {
		errMsg string
		action models.RecoveryActionType
	}{
		{"Connection timeout", models.RecoveryRetry},
		{"operation timeout after 30s", models.RecoveryRetry},
		{"connection refused", models.RecoveryReconnect},
		{"broken pipe", models.RecoveryReconnect},
		{"access denied reading region", models.RecoverySwitchApproach},
		{"permission error", models.RecoverySwitchApproach},
		{"something unexpected", models.RecoverySwitchApproach},
	}

	for _, tc := range tests {
		recovery := unit.RecoverFromError(tc.errMsg, ctx)
		assert.Equal(t, tc.action, recovery.Action, "error: %s", tc.errMsg)
	}

	// Switch-approach suggestions come from the current subtask
	recovery := unit.RecoverFromError("access denied", ctx)
	assert.Equal(t, []string{"disassemble", "analyze_function"}, recovery.AlternativeTools)
}

func TestAnalyzeResultRules(t *testing.T) {
	unit := New(nil, nil)
	ctx := newContext(4)

	success := unit.AnalyzeResult(models.ToolResult{
		ToolName: "get_process_info",
		Success:  true,
		Result:   map[string]interface{}{"pid": 1234},
	}, ctx)
	assert.True(t, success.Success)
	assert.Equal(t, 0.8, success.Confidence)
	require.NotEmpty(t, success.Findings)
	assert.Equal(t, "success", success.Findings[0].Type)

	failure := unit.AnalyzeResult(models.ToolResult{
		ToolName: "disassemble",
		Success:  false,
		Error:    "bad address",
	}, ctx)
	assert.False(t, failure.Success)
	assert.Equal(t, 0.3, failure.Confidence)
	require.NotEmpty(t, failure.Findings)
	assert.Equal(t, "error", failure.Findings[0].Type)
	assert.Contains(t, failure.Findings[0].Message, "bad address")
}

func TestModelFallbackOnGarbageResponse(t *testing.T) {
	client := &testutil.MockChatClient{}
	client.On("Chat", mock.Anything).Return("I cannot help with that", nil)

	unit := New(client, nil)
	ctx := newContext(4)

	analysis := unit.AnalyzeResult(models.ToolResult{ToolName: "ping", Success: true, Result: "pong"}, ctx)
	assert.Equal(t, 0.8, analysis.Confidence, "unparseable model output falls back to rules")

	decision := unit.MakeDecision(models.StateEvaluation{CurrentState: models.TaskStateRunning, Progress: 0.5}, ctx)
	assert.Equal(t, models.ActionContinue, decision.Action)
}

func TestModelFallbackOnTransportError(t *testing.T) {
	client := &testutil.MockChatClient{}
	client.On("Chat", mock.Anything).Return("", fmt.Errorf("connection refused"))

	unit := New(client, nil)
	ctx := newContext(4)

	analysis := unit.AnalyzeResult(models.ToolResult{ToolName: "ping", Success: false, Error: "down"}, ctx)
	assert.Equal(t, 0.3, analysis.Confidence)
}

func TestModelDecisionUsedWhenParseable(t *testing.T) {
	client := &testutil.MockChatClient{}
	client.On("Chat", mock.Anything).Return(`{"action": "adjust", "reason": "narrow the scan", "confidence": 0.9}`, nil)

	unit := New(client, nil)
	ctx := newContext(4)

	decision := unit.MakeDecision(models.StateEvaluation{CurrentState: models.TaskStateRunning, Progress: 0.5}, ctx)
	assert.Equal(t, models.ActionAdjust, decision.Action)
	assert.Equal(t, 0.9, decision.Confidence)
	assert.Equal(t, "narrow the scan", decision.Reason)
}
