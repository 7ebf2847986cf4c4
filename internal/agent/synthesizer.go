// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"fmt"

	"github.com/specter-re/specter/internal/core/models"
)

// Synthesize builds the final report from a finished (or aborted)
// execution context.
func Synthesize(ctx *models.ExecutionContext) *models.AnalysisReport {
	succeeded := 0
	failed := 0
	toolsUsed := make(map[string]bool)

	var details []models.Finding
	for _, step := range ctx.History {
		if step.Success {
			succeeded++
			toolsUsed[step.ToolName] = true
			if step.Result != nil {
				details = append(details, models.Finding{
					Type:    "result",
					Message: fmt.Sprintf("step %d: %s", step.StepID, step.ToolName),
					Data:    step.Result,
				})
			}
		} else {
			failed++
			details = append(details, models.Finding{
				Type:    "error",
				Message: fmt.Sprintf("step %d: %s failed: %s", step.StepID, step.ToolName, step.Error),
			})
		}
	}

	success := ctx.State != models.TaskStateFailed && ctx.State != models.TaskStateCancelled

	summary := fmt.Sprintf("%s task %s: %d of %d planned steps succeeded",
		ctx.ExecutionPlan.TaskType, ctx.State, succeeded, ctx.ExecutionPlan.EstimatedSteps)

	insights := []string{
		fmt.Sprintf("%d tool invocations executed, %d succeeded, %d failed",
			len(ctx.History), succeeded, failed),
		fmt.Sprintf("%d distinct tools produced results", len(toolsUsed)),
	}

	var recommendations []string
	switch {
	case ctx.State == models.TaskStateCompleted:
		recommendations = append(recommendations, "review the collected findings")
	case failed > 0:
		recommendations = append(recommendations, "review failed steps and retry with adjusted parameters")
	default:
		recommendations = append(recommendations, "resubmit the request to continue the analysis")
	}

	var errMsg string
	if !success {
		errMsg = fmt.Sprintf("task ended in state %s with %d failed steps", ctx.State, failed)
	}

	return &models.AnalysisReport{
		TaskID:          ctx.TaskID,
		Request:         ctx.UserRequest,
		Success:         success,
		Summary:         summary,
		Details:         details,
		Insights:        insights,
		Recommendations: recommendations,
		StepsExecuted:   len(ctx.History),
		Error:           errMsg,
	}
}
