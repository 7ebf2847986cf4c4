// SPDX-License-Identifier: Apache-2.0

// Package reasoning interprets tool results, evaluates overall progress
// and decides how execution should proceed. Result analysis and decisions
// try the language model first and fall back to deterministic rules on
// any failure; state evaluation is rule-only.
package reasoning

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/specter-re/specter/internal/core/models"
	"github.com/specter-re/specter/internal/llm"
)

// stuckLoopMarker tags the issue raised when recent history is all
// failures. The decision table matches on it by substring.
const stuckLoopMarker = "stuck in error loop"

// PlanMutator is the extension point for decisions that want to change
// the plan. The default implementation only records intent.
type PlanMutator interface {
	ModifyPlan(ctx *models.ExecutionContext)
	AttemptRecovery(ctx *models.ExecutionContext)
}

type loggingMutator struct {
	logger *log.Logger
}

func (m *loggingMutator) ModifyPlan(ctx *models.ExecutionContext) {
	m.logger.Printf("plan modification suggested for task %s (not applied)", ctx.TaskID)
}

func (m *loggingMutator) AttemptRecovery(ctx *models.ExecutionContext) {
	subtask := currentSubtask(ctx)
	if subtask != nil {
		m.logger.Printf("attempting recovery for subtask: %s", subtask.Description)
	}
}

// Unit is the reasoning unit. A nil chat client disables the model path.
type Unit struct {
	client  llm.ChatClient
	mutator PlanMutator
	logger  *log.Logger
}

// Option configures a Unit.
type Option func(*Unit)

// WithMutator replaces the default logging-only plan mutator.
func WithMutator(m PlanMutator) Option {
	return func(u *Unit) { u.mutator = m }
}

// New creates a reasoning unit. client may be nil for rule-only behavior.
func New(client llm.ChatClient, logger *log.Logger, opts ...Option) *Unit {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	u := &Unit{
		client: client,
		logger: logger,
	}
	u.mutator = &loggingMutator{logger: logger}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// AnalyzeResult interprets one tool result against the current context.
func (u *Unit) AnalyzeResult(result models.ToolResult, ctx *models.ExecutionContext) models.ResultAnalysis {
	if u.client != nil {
		if analysis, err := u.analyzeWithModel(result); err == nil {
			return *analysis
		} else {
			u.logger.Printf("model analysis failed, using rule-based analysis: %v", err)
		}
	}
	return u.analyzeWithRules(result, ctx)
}

func (u *Unit) analyzeWithModel(result models.ToolResult) (*models.ResultAnalysis, error) {
	payload := result.Error
	if result.Success {
		payload = fmt.Sprintf("%v", result.Result)
	}

	content, err := u.client.Chat(llm.AnalysisMessages(result.ToolName, result.Success, payload))
	if err != nil {
		return nil, err
	}
	return llm.ParseResultAnalysis(content)
}

func (u *Unit) analyzeWithRules(result models.ToolResult, ctx *models.ExecutionContext) models.ResultAnalysis {
	analysis := models.ResultAnalysis{
		Success:    result.Success,
		Confidence: 0.8,
	}

	if !result.Success {
		analysis.Confidence = 0.3
		analysis.Findings = append(analysis.Findings, models.Finding{
			Type:    "error",
			Message: fmt.Sprintf("tool '%s' failed: %s", result.ToolName, result.Error),
		})
		analysis.Conclusions = append(analysis.Conclusions, "tool execution failed, need to adjust approach")
		analysis.NextSteps = append(analysis.NextSteps, "attempt recovery or alternative approach")
		return analysis
	}

	analysis.Findings = append(analysis.Findings, models.Finding{
		Type:    "success",
		Message: fmt.Sprintf("tool '%s' executed successfully", result.ToolName),
		Data:    result.Result,
	})

	if subtask := currentSubtask(ctx); subtask != nil {
		analysis.Conclusions = append(analysis.Conclusions,
			fmt.Sprintf("subtask '%s' partially complete", subtask.Description))

		if SubtaskComplete(subtask, ctx.History) {
			analysis.NextSteps = append(analysis.NextSteps,
				fmt.Sprintf("move to next subtask: %s", nextSubtaskDescription(ctx)))
		} else {
			analysis.NextSteps = append(analysis.NextSteps,
				fmt.Sprintf("continue current subtask: %s", subtask.Description))
		}
	}

	return analysis
}

// EvaluateState summarizes progress from the context. Deterministic: the
// same context always yields the same evaluation.
func (u *Unit) EvaluateState(ctx *models.ExecutionContext) models.StateEvaluation {
	completed := 0
	for _, step := range ctx.History {
		if step.Success {
			completed++
		}
	}

	estimated := ctx.ExecutionPlan.EstimatedSteps
	if estimated < 1 {
		estimated = 1
	}
	progress := float64(completed) / float64(estimated)
	if progress > 1.0 {
		progress = 1.0
	}

	var issues []string
	var failed []models.ExecutionStep
	for _, step := range ctx.History {
		if !step.Success {
			failed = append(failed, step)
		}
	}
	if len(failed) > 3 {
		failed = failed[len(failed)-3:]
	}
	for _, step := range failed {
		issues = append(issues, fmt.Sprintf("recent error in step %d: %s", step.StepID, step.Error))
	}

	if isStuck(ctx.History) {
		issues = append(issues, "appears to be "+stuckLoopMarker)
	}

	var recommendations []string
	switch {
	case progress >= 1.0:
		recommendations = append(recommendations, "task appears complete, finalize results")
	case len(issues) > 0:
		recommendations = append(recommendations, "address identified issues before proceeding")
	default:
		recommendations = append(recommendations, "continue with planned execution")
	}

	return models.StateEvaluation{
		CurrentState:    ctx.State,
		Progress:        progress,
		Success:         ctx.State != models.TaskStateFailed && progress < 1.0,
		Issues:          issues,
		Recommendations: recommendations,
	}
}

// isStuck reports whether the last five steps all failed
func isStuck(history []models.ExecutionStep) bool {
	if len(history) < 5 {
		return false
	}
	for _, step := range history[len(history)-5:] {
		if step.Success {
			return false
		}
	}
	return true
}

// MakeDecision chooses the next action from the state evaluation.
func (u *Unit) MakeDecision(evaluation models.StateEvaluation, ctx *models.ExecutionContext) models.Decision {
	if u.client != nil {
		if decision, err := u.decideWithModel(evaluation, ctx); err == nil {
			return *decision
		} else {
			u.logger.Printf("model decision failed, using rule-based decision: %v", err)
		}
	}
	return u.decideWithRules(evaluation)
}

func (u *Unit) decideWithModel(evaluation models.StateEvaluation, ctx *models.ExecutionContext) (*models.Decision, error) {
	content, err := u.client.Chat(llm.DecisionMessages(ctx.UserRequest, evaluation.Progress, evaluation.Issues))
	if err != nil {
		return nil, err
	}
	return llm.ParseDecision(content)
}

// decideWithRules is the priority-ordered decision table. Confidence is
// derived from progress (penalized when issues exist) except for the
// recover and adjust branches, which carry fixed values.
func (u *Unit) decideWithRules(evaluation models.StateEvaluation) models.Decision {
	confidence := evaluation.Progress
	if len(evaluation.Issues) > 0 {
		confidence *= 0.7
	}

	switch {
	case evaluation.CurrentState == models.TaskStateCompleted:
		return models.Decision{
			Action:     models.ActionFinalize,
			Reason:     "task has been marked as completed",
			Confidence: confidence,
			NextSteps:  []string{"generate final report"},
		}
	case evaluation.CurrentState == models.TaskStateFailed:
		return models.Decision{
			Action:     models.ActionAbort,
			Reason:     "task has been marked as failed",
			Confidence: confidence,
			NextSteps:  []string{"abort execution and report error"},
		}
	case containsMarker(evaluation.Issues, stuckLoopMarker):
		return models.Decision{
			Action:     models.ActionRecover,
			Reason:     "detected error loop, attempting recovery",
			Confidence: 0.5,
			NextSteps:  []string{"try alternative tools or approaches"},
		}
	case len(evaluation.Issues) > 0:
		return models.Decision{
			Action:     models.ActionAdjust,
			Reason:     "issues detected, need to adjust plan",
			Confidence: 0.7,
			NextSteps:  evaluation.Recommendations,
		}
	case evaluation.Progress >= 1.0:
		return models.Decision{
			Action:     models.ActionFinalize,
			Reason:     "estimated steps completed",
			Confidence: confidence,
			NextSteps:  []string{"generate final report"},
		}
	default:
		return models.Decision{
			Action:     models.ActionContinue,
			Reason:     "no major issues detected, continue with plan",
			Confidence: confidence,
			NextSteps:  []string{"execute next planned step"},
		}
	}
}

func containsMarker(issues []string, marker string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, marker) {
			return true
		}
	}
	return false
}

// AdjustPlan applies a decision's side effects to the context.
func (u *Unit) AdjustPlan(decision models.Decision, ctx *models.ExecutionContext) {
	switch decision.Action {
	case models.ActionRecover:
		u.mutator.AttemptRecovery(ctx)
	case models.ActionAdjust:
		u.mutator.ModifyPlan(ctx)
	case models.ActionFinalize:
		ctx.State = models.TaskStateCompleted
	case models.ActionAbort:
		ctx.State = models.TaskStateFailed
	case models.ActionContinue, models.ActionError:
		// no adjustment
	}
}

// RecoverFromError classifies a tool error message into a recovery
// action. Matching is substring-based and first match wins.
func (u *Unit) RecoverFromError(errMsg string, ctx *models.ExecutionContext) models.RecoveryAction {
	lowered := strings.ToLower(errMsg)

	switch {
	case strings.Contains(lowered, "timeout"):
		return models.RecoveryAction{
			Action:     models.RecoveryRetry,
			Reason:     "timeout occurred, attempting retry",
			RetryCount: 1,
		}
	case strings.Contains(lowered, "connection") || strings.Contains(lowered, "pipe"):
		return models.RecoveryAction{
			Action:     models.RecoveryReconnect,
			Reason:     "connection issue detected, attempting to reconnect",
			RetryCount: 1,
		}
	case strings.Contains(lowered, "access denied") || strings.Contains(lowered, "permission"):
		return models.RecoveryAction{
			Action:           models.RecoverySwitchApproach,
			Reason:           "permission denied, trying alternative approach",
			AlternativeTools: alternativeTools(ctx),
		}
	default:
		return models.RecoveryAction{
			Action:           models.RecoverySwitchApproach,
			Reason:           fmt.Sprintf("general error occurred: %s, trying alternative approach", errMsg),
			AlternativeTools: alternativeTools(ctx),
		}
	}
}

// SubtaskComplete reports whether enough of a subtask's distinct tools
// have succeeded. The threshold is half the tool list, rounded down, with
// a minimum of one.
func SubtaskComplete(subtask *models.SubTask, history []models.ExecutionStep) bool {
	succeeded := make(map[string]bool)
	for _, step := range history {
		if step.Success {
			succeeded[step.ToolName] = true
		}
	}

	used := 0
	for _, tool := range subtask.Tools {
		if succeeded[tool] {
			used++
		}
	}

	threshold := len(subtask.Tools) / 2
	if threshold < 1 {
		threshold = 1
	}
	return used >= threshold
}

// currentSubtask returns the subtask at the step cursor, clamped to the
// last subtask.
func currentSubtask(ctx *models.ExecutionContext) *models.SubTask {
	subtasks := ctx.ExecutionPlan.SubTasks
	if len(subtasks) == 0 {
		return nil
	}
	idx := ctx.CurrentStep
	if idx >= len(subtasks) {
		idx = len(subtasks) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return &subtasks[idx]
}

func nextSubtaskDescription(ctx *models.ExecutionContext) string {
	subtasks := ctx.ExecutionPlan.SubTasks
	next := ctx.CurrentStep + 1
	if next >= len(subtasks) {
		next = len(subtasks) - 1
	}
	if next < 0 || next >= len(subtasks) {
		return "no more subtasks"
	}
	return subtasks[next].Description
}

func alternativeTools(ctx *models.ExecutionContext) []string {
	subtask := currentSubtask(ctx)
	if subtask == nil {
		return nil
	}
	return append([]string{}, subtask.Tools...)
}
