// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"fmt"
	"testing"

	"github.com/specter-re/specter/internal/core/models"
	"github.com/specter-re/specter/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		request string
		intent  string
	}{
		{"set a breakpoint on the damage handler", "debug"},
		{"analyze the structure at the target", "structure"},
		{"disassemble the update function", "function"},
		{"find the player health value", "search"},
		{"analyze the target process", "analyze"},
		{"read the inventory data", "read"},
		{"patch the check at 0x1000", "modify"},
		{"follow the pointer to the base address", "memory"},
		{"do something useful", "general"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.intent, ClassifyIntent(tc.request), "request: %s", tc.request)
	}
}

func TestRulePlanDependencyOrdering(t *testing.T) {
	strategy := NewRuleStrategy(nil, nil)

	requests := []string{
		"analyze the structure at the target",
		"disassemble the update function",
		"find the player health value",
		"set a breakpoint on the damage handler",
		"do something useful",
	}

	for _, request := range requests {
		plan, err := strategy.Plan(request)
		require.NoError(t, err)
		require.NotEmpty(t, plan.SubTasks, "plan for %q should have subtasks", request)

		seen := make(map[int]bool)
		for _, st := range plan.SubTasks {
			for _, dep := range st.Dependencies {
				assert.NotEqual(t, st.ID, dep, "subtask %d must not depend on itself", st.ID)
				assert.True(t, seen[dep], "subtask %d depends on %d which is not defined earlier", st.ID, dep)
			}
			seen[st.ID] = true
		}

		assert.NoError(t, ValidatePlan(plan), "canned plan for %q should validate", request)
	}
}

func TestStructureRequestPlan(t *testing.T) {
	p := New(nil, nil, nil)

	plan := p.Plan("analyze the structure at the target")

	assert.Equal(t, models.TaskTypeDataStructureAnalysis, plan.TaskType)
	require.Len(t, plan.SubTasks, 4)
	assert.Equal(t, []string{"get_process_info"}, plan.SubTasks[0].Tools)
	assert.Empty(t, plan.SubTasks[0].Dependencies)
	assert.NotEmpty(t, plan.TaskID)
	assert.Greater(t, plan.EstimatedSteps, 0)
}

func TestPlanNeverFails(t *testing.T) {
	p := New(nil, nil, nil)

	for _, request := range []string{"", "???", "completely unrelated gibberish", "找到玩家血量"} {
		plan := p.Plan(request)
		require.NotNil(t, plan, "planning must always return a plan")
		assert.NotEmpty(t, plan.SubTasks, "plan for %q must have at least one subtask", request)
		assert.NotEmpty(t, plan.TaskID)
	}
}

func TestFallbackOnPrimaryError(t *testing.T) {
	primary := &testutil.MockStrategy{}
	primary.On("Plan", "find the secret").Return(nil, fmt.Errorf("model unavailable"))

	p := New(primary, nil, nil)
	plan := p.Plan("find the secret")

	require.NotNil(t, plan)
	assert.Equal(t, models.TaskTypePatternSearch, plan.TaskType, "fallback should classify by rules")
	assert.NotEmpty(t, plan.SubTasks)
	primary.AssertExpectations(t)
}

func TestFallbackOnEmptyPrimaryPlan(t *testing.T) {
	primary := &testutil.MockStrategy{}
	primary.On("Plan", "debug the target").Return(&models.ExecutionPlan{}, nil)

	p := New(primary, nil, nil)
	plan := p.Plan("debug the target")

	assert.Equal(t, models.TaskTypeBreakpointDebugging, plan.TaskType)
	assert.NotEmpty(t, plan.SubTasks)
}

func TestPrimaryPlanUsedWhenValid(t *testing.T) {
	generated := &models.ExecutionPlan{
		TaskType:    models.TaskTypePatternSearch,
		Description: "model plan",
		SubTasks: []models.SubTask{
			{ID: 1, Description: "scan", Tools: []string{"scan_all"}},
		},
	}

	primary := &testutil.MockStrategy{}
	primary.On("Plan", "scan it").Return(generated, nil)

	p := New(primary, nil, nil)
	plan := p.Plan("scan it")

	assert.Equal(t, "model plan", plan.Description)
	assert.NotEmpty(t, plan.TaskID, "planner assigns the task id")
	assert.Equal(t, 1, plan.EstimatedSteps)
}

func TestPlanTaskIDsUnique(t *testing.T) {
	p := New(nil, nil, nil)

	first := p.Plan("find the value")
	second := p.Plan("find the value")

	assert.NotEqual(t, first.TaskID, second.TaskID)
}
