// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"fmt"
	"strings"
)

const planSystemPrompt = `You are a reverse-engineering task planner. Given a user request, produce a JSON plan with this shape:
{
  "task_type": "one of data_structure_analysis, function_analysis, pattern_search, breakpoint_debugging, comprehensive_analysis",
  "description": "what the plan accomplishes",
  "subtasks": [
    {"id": 1, "description": "...", "tools": ["tool_name"], "expected_output": "...", "dependencies": []}
  ],
  "estimated_steps": 4
}
Subtask ids start at 1 and are sequential. Dependencies reference earlier ids only. Respond with JSON only.`

const analysisSystemPrompt = `You are a reverse-engineering analyst. Interpret the tool result and respond with JSON only:
{"success": true, "findings": [{"type": "...", "message": "..."}], "conclusions": ["..."], "next_steps": ["..."], "confidence": 0.8}`

const decisionSystemPrompt = `You decide how a reverse-engineering session should proceed. Respond with JSON only:
{"action": "one of continue, adjust, recover, abort, finalize", "reason": "...", "confidence": 0.8, "next_steps": ["..."]}`

// PlanMessages builds the conversation for plan generation.
func PlanMessages(request string, toolNames []string) []Message {
	user := fmt.Sprintf("Available tools: %s\n\nRequest: %s", strings.Join(toolNames, ", "), request)
	return []Message{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: user},
	}
}

// AnalysisMessages builds the conversation for result analysis.
func AnalysisMessages(toolName string, success bool, payload string) []Message {
	user := fmt.Sprintf("Tool: %s\nSucceeded: %t\nOutput:\n%s", toolName, success, payload)
	return []Message{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: user},
	}
}

// DecisionMessages builds the conversation for the continue/adjust/abort
// decision.
func DecisionMessages(request string, progress float64, issues []string) []Message {
	user := fmt.Sprintf("Request: %s\nProgress: %.2f\nIssues: %s", request, progress, strings.Join(issues, "; "))
	return []Message{
		{Role: "system", Content: decisionSystemPrompt},
		{Role: "user", Content: user},
	}
}
