// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/specter-re/specter/internal/core/models"
)

var (
	jsonFenceRe  = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	plainFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// ExtractJSON pulls the JSON payload out of free-form model output. It
// tries a ```json fence, then a plain fence, then the outermost brace
// span. Returns false when no candidate is found.
func ExtractJSON(text string) (string, bool) {
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := plainFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1], true
	}

	return "", false
}

// ParseTaskPlan parses model output into an execution plan. The task id
// is left empty for the caller to assign.
func ParseTaskPlan(text string) (*models.ExecutionPlan, error) {
	payload, ok := ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON found in plan response")
	}

	var plan models.ExecutionPlan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, fmt.Errorf("error parsing plan response: %w", err)
	}

	if len(plan.SubTasks) == 0 {
		return nil, fmt.Errorf("plan response has no subtasks")
	}

	if plan.EstimatedSteps <= 0 {
		plan.EstimatedSteps = len(plan.SubTasks)
	}

	return &plan, nil
}

// ParseResultAnalysis parses model output into a result analysis.
func ParseResultAnalysis(text string) (*models.ResultAnalysis, error) {
	payload, ok := ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON found in analysis response")
	}

	var analysis models.ResultAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil, fmt.Errorf("error parsing analysis response: %w", err)
	}

	if analysis.Confidence < 0 || analysis.Confidence > 1 {
		return nil, fmt.Errorf("analysis confidence %f out of range", analysis.Confidence)
	}

	return &analysis, nil
}

// ParseDecision parses model output into a decision, rejecting actions
// outside the fixed vocabulary.
func ParseDecision(text string) (*models.Decision, error) {
	payload, ok := ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON found in decision response")
	}

	var decision models.Decision
	if err := json.Unmarshal([]byte(payload), &decision); err != nil {
		return nil, fmt.Errorf("error parsing decision response: %w", err)
	}

	switch decision.Action {
	case models.ActionContinue, models.ActionAdjust, models.ActionRecover,
		models.ActionAbort, models.ActionFinalize, models.ActionError:
	default:
		return nil, fmt.Errorf("unknown decision action: %q", decision.Action)
	}

	return &decision, nil
}
