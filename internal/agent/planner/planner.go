// SPDX-License-Identifier: Apache-2.0

// Package planner turns a free-form request into an ordered,
// dependency-aware execution plan. Two strategies exist: a model-backed
// one and a deterministic rule-backed one. Planning never fails: the
// rule path is always available as a fallback.
package planner

import (
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/specter-re/specter/internal/core/models"
	"github.com/specter-re/specter/internal/llm"
)

// Strategy produces a plan for a request. The task id is assigned by the
// Planner, not the strategy.
type Strategy interface {
	Plan(request string) (*models.ExecutionPlan, error)
}

// intentPatterns maps an intent label to its trigger keywords. Order
// matters: noun-specific intents (structure, function, debug) are checked
// before generic verbs so "analyze the structure" classifies by its noun.
var intentPatterns = []struct {
	intent   string
	keywords []string
}{
	{"debug", []string{"debug", "breakpoint", "watch", "trace"}},
	{"structure", []string{"structure", "struct", "layout", "field", "offset"}},
	{"function", []string{"function", "subroutine", "disassemble", "call"}},
	{"search", []string{"search", "find", "scan", "locate", "pattern"}},
	{"analyze", []string{"analyze", "analysis", "examine", "investigate"}},
	{"read", []string{"read", "dump", "inspect"}},
	{"modify", []string{"modify", "write", "patch", "change"}},
	{"memory", []string{"memory", "address", "pointer"}},
}

// ClassifyIntent labels a request by keyword match; first match wins.
func ClassifyIntent(request string) string {
	lowered := strings.ToLower(request)
	for _, p := range intentPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lowered, kw) {
				return p.intent
			}
		}
	}
	return "general"
}

// IntentTaskType maps an intent label to a task type. Unrecognized
// intents get the richest template.
func IntentTaskType(intent string) models.TaskType {
	switch intent {
	case "structure", "read", "memory":
		return models.TaskTypeDataStructureAnalysis
	case "function":
		return models.TaskTypeFunctionAnalysis
	case "search":
		return models.TaskTypePatternSearch
	case "debug", "modify":
		return models.TaskTypeBreakpointDebugging
	default:
		return models.TaskTypeComprehensiveAnalysis
	}
}

// RuleStrategy is the deterministic planning path: keyword intent
// classification, a canned template per task type, and optional overlay
// rules that append extra subtasks.
type RuleStrategy struct {
	overlays []OverlayRule
	logger   *log.Logger
}

// NewRuleStrategy creates the rule-backed strategy
func NewRuleStrategy(overlays []OverlayRule, logger *log.Logger) *RuleStrategy {
	return &RuleStrategy{overlays: overlays, logger: logger}
}

// Plan builds a plan from the canned template for the classified intent
func (s *RuleStrategy) Plan(request string) (*models.ExecutionPlan, error) {
	intent := ClassifyIntent(request)
	taskType := IntentTaskType(intent)

	plan := &models.ExecutionPlan{
		TaskType:    taskType,
		Description: taskDescription(taskType),
		SubTasks:    cannedSubtasks(taskType),
	}

	if len(s.overlays) > 0 {
		applyOverlays(plan, s.overlays, request, intent, s.logger)
	}

	plan.EstimatedSteps = countSteps(plan)
	return plan, nil
}

// ModelStrategy asks the language model for a structured plan.
type ModelStrategy struct {
	client    llm.ChatClient
	toolNames []string
}

// NewModelStrategy creates the model-backed strategy
func NewModelStrategy(client llm.ChatClient, toolNames []string) *ModelStrategy {
	return &ModelStrategy{client: client, toolNames: toolNames}
}

// Plan requests a plan from the model and parses it. Any transport or
// parse failure is returned for the caller to fall back on.
func (s *ModelStrategy) Plan(request string) (*models.ExecutionPlan, error) {
	content, err := s.client.Chat(llm.PlanMessages(request, s.toolNames))
	if err != nil {
		return nil, err
	}
	return llm.ParseTaskPlan(content)
}

// Planner is the single entry point for plan generation.
type Planner struct {
	primary  Strategy
	fallback *RuleStrategy
	logger   *log.Logger
}

// New creates a planner. primary may be nil to use the rule path only.
func New(primary Strategy, fallback *RuleStrategy, logger *log.Logger) *Planner {
	if logger == nil {
		logger = log.New(log.Writer(), "[planner] ", log.LstdFlags)
	}
	if fallback == nil {
		fallback = NewRuleStrategy(nil, logger)
	}
	return &Planner{primary: primary, fallback: fallback, logger: logger}
}

// Plan produces a plan for the request. It never returns an error: if the
// primary strategy fails or yields an empty plan, the rule path supplies
// the result.
func (p *Planner) Plan(request string) *models.ExecutionPlan {
	var plan *models.ExecutionPlan

	if p.primary != nil {
		generated, err := p.primary.Plan(request)
		if err != nil {
			p.logger.Printf("model planning failed, using rule-based plan: %v", err)
		} else if len(generated.SubTasks) == 0 {
			p.logger.Printf("model plan had no subtasks, using rule-based plan")
		} else {
			plan = generated
		}
	}

	if plan == nil {
		// The rule strategy cannot fail
		plan, _ = p.fallback.Plan(request)
	}

	plan.TaskID = uuid.New().String()
	if plan.EstimatedSteps <= 0 {
		plan.EstimatedSteps = countSteps(plan)
	}

	return plan
}

// countSteps totals the tool invocations a plan will attempt
func countSteps(plan *models.ExecutionPlan) int {
	count := 0
	for _, st := range plan.SubTasks {
		count += len(st.Tools)
	}
	if count == 0 {
		count = len(plan.SubTasks)
	}
	return count
}
