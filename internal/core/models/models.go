// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// TaskState tracks the lifecycle of an execution context.
type TaskState string

const (
	TaskStatePending   TaskState = "pending"
	TaskStateRunning   TaskState = "running"
	TaskStatePaused    TaskState = "paused"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
	TaskStateCancelled TaskState = "cancelled"
)

// IsTerminal returns true once a context can no longer make progress.
func (s TaskState) IsTerminal() bool {
	return s == TaskStateCompleted || s == TaskStateFailed || s == TaskStateCancelled
}

// TaskType classifies a request into one of the planning templates.
type TaskType string

const (
	TaskTypeDataStructureAnalysis TaskType = "data_structure_analysis"
	TaskTypeFunctionAnalysis      TaskType = "function_analysis"
	TaskTypePatternSearch         TaskType = "pattern_search"
	TaskTypeBreakpointDebugging   TaskType = "breakpoint_debugging"
	TaskTypeComprehensiveAnalysis TaskType = "comprehensive_analysis"
)

// SubTask is one unit of a plan: a small group of tool invocations with
// dependencies on earlier subtasks.
type SubTask struct {
	ID             int      `json:"id" yaml:"id"`
	Description    string   `json:"description" yaml:"description"`
	Tools          []string `json:"tools" yaml:"tools"`
	ExpectedOutput string   `json:"expected_output" yaml:"expected_output"`
	Dependencies   []int    `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// ExecutionPlan is the ordered set of subtasks generated for one request.
type ExecutionPlan struct {
	TaskID         string    `json:"task_id" yaml:"task_id"`
	TaskType       TaskType  `json:"task_type" yaml:"task_type"`
	Description    string    `json:"description" yaml:"description"`
	SubTasks       []SubTask `json:"subtasks" yaml:"subtasks"`
	EstimatedSteps int       `json:"estimated_steps" yaml:"estimated_steps"`
}

// ExecutionStep records a single tool invocation. Steps are appended to a
// context's history and never mutated afterwards.
type ExecutionStep struct {
	StepID    int                    `json:"step_id"`
	ToolName  string                 `json:"tool_name"`
	ToolArgs  map[string]interface{} `json:"tool_args,omitempty"`
	Result    interface{}            `json:"result,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
}

// ExecutionContext is the live state of one in-flight request.
type ExecutionContext struct {
	TaskID              string                 `json:"task_id"`
	UserRequest         string                 `json:"user_request"`
	ExecutionPlan       *ExecutionPlan         `json:"execution_plan"`
	CurrentStep         int                    `json:"current_step"`
	History             []ExecutionStep        `json:"history"`
	IntermediateResults map[string]interface{} `json:"intermediate_results"`
	State               TaskState              `json:"state"`
}

// ToolResult is the normalized outcome of one tool invocation. A failed
// result always carries a non-empty Error; a successful one may carry an
// empty Result.
type ToolResult struct {
	ToolName      string      `json:"tool_name"`
	Success       bool        `json:"success"`
	Result        interface{} `json:"result,omitempty"`
	Error         string      `json:"error,omitempty"`
	ExecutionTime float64     `json:"execution_time"`
}

// Finding is one structured note emitted by result analysis.
type Finding struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ResultAnalysis is the reasoning unit's interpretation of one tool result.
type ResultAnalysis struct {
	Success     bool      `json:"success"`
	Findings    []Finding `json:"findings"`
	Conclusions []string  `json:"conclusions"`
	NextSteps   []string  `json:"next_steps"`
	Confidence  float64   `json:"confidence"`
}

// StateEvaluation summarizes overall progress of a context.
type StateEvaluation struct {
	CurrentState    TaskState `json:"current_state"`
	Progress        float64   `json:"progress"`
	Success         bool      `json:"success"`
	Issues          []string  `json:"issues"`
	Recommendations []string  `json:"recommendations"`
}

// DecisionAction is the reasoning unit's directive to the orchestrator.
type DecisionAction string

const (
	ActionContinue DecisionAction = "continue"
	ActionAdjust   DecisionAction = "adjust"
	ActionRecover  DecisionAction = "recover"
	ActionAbort    DecisionAction = "abort"
	ActionFinalize DecisionAction = "finalize"
	ActionError    DecisionAction = "error"
)

// Decision directs the orchestrator's next move.
type Decision struct {
	Action     DecisionAction `json:"action"`
	Reason     string         `json:"reason"`
	Confidence float64        `json:"confidence"`
	NextSteps  []string       `json:"next_steps,omitempty"`
}

// RecoveryActionType classifies how to react to a tool-level error.
type RecoveryActionType string

const (
	RecoveryRetry          RecoveryActionType = "retry"
	RecoveryReconnect      RecoveryActionType = "reconnect"
	RecoverySwitchApproach RecoveryActionType = "switch_approach"
	RecoveryAbort          RecoveryActionType = "abort"
)

// RecoveryAction is the suggested reaction to a tool-level error.
type RecoveryAction struct {
	Action           RecoveryActionType `json:"action"`
	Reason           string             `json:"reason"`
	AlternativeTools []string           `json:"alternative_tools,omitempty"`
	RetryCount       int                `json:"retry_count"`
}

// AnalysisReport is the final artifact returned for every request. Execute
// never fails outright; a failed run produces a report with Success false
// and Error set.
type AnalysisReport struct {
	TaskID          string    `json:"task_id"`
	Request         string    `json:"request"`
	Success         bool      `json:"success"`
	Summary         string    `json:"summary"`
	Details         []Finding `json:"details,omitempty"`
	Insights        []string  `json:"insights,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	StepsExecuted   int       `json:"steps_executed"`
	ExecutionTime   float64   `json:"execution_time"`
	Error           string    `json:"error,omitempty"`
}

// AgentStatus reports the orchestrator loop's current mode.
type AgentStatus string

const (
	AgentStopped AgentStatus = "stopped"
	AgentRunning AgentStatus = "running"
	AgentPaused  AgentStatus = "paused"
	AgentError   AgentStatus = "error"
)
