// SPDX-License-Identifier: Apache-2.0

// Package agent contains the orchestrator: the top-level loop that ties
// the planner, context store, tool executor and reasoning unit together.
// One worker processes one request to completion at a time.
package agent

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/specter-re/specter/internal/agent/executor"
	"github.com/specter-re/specter/internal/agent/planner"
	"github.com/specter-re/specter/internal/agent/reasoning"
	"github.com/specter-re/specter/internal/agent/store"
	"github.com/specter-re/specter/internal/core/catalog"
	"github.com/specter-re/specter/internal/core/config"
	"github.com/specter-re/specter/internal/core/models"
)

// Agent drives the full request lifecycle: plan, execute, reason, report.
type Agent struct {
	planner  *planner.Planner
	reasoner *reasoning.Unit
	store    *store.Store
	executor *executor.Executor
	registry *catalog.Registry
	logger   *log.Logger

	stepDelay time.Duration

	mu     sync.Mutex
	status models.AgentStatus

	queue    chan string
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New wires an agent from its components
func New(cfg config.AgentConfig, p *planner.Planner, r *reasoning.Unit, s *store.Store, e *executor.Executor, reg *catalog.Registry, logger *log.Logger) *Agent {
	if logger == nil {
		logger = log.New(log.Writer(), "[agent] ", log.LstdFlags)
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 128
	}
	return &Agent{
		planner:   p,
		reasoner:  r,
		store:     s,
		executor:  e,
		registry:  reg,
		logger:    logger,
		stepDelay: cfg.StepDelay,
		status:    models.AgentStopped,
		queue:     make(chan string, queueSize),
		stopCh:    make(chan struct{}),
	}
}

// Execute runs a single request from planning to report. It never returns
// an error: failures produce a report with Success false and Error set.
func (a *Agent) Execute(request string) *models.AnalysisReport {
	start := time.Now()
	a.setStatus(models.AgentRunning)

	a.logger.Printf("executing request: %s", request)

	plan := a.planner.Plan(request)
	ctx := a.store.CreateContext(request, plan)

	err := a.executePlan(ctx)
	if err != nil {
		a.logger.Printf("execution failed: %v", err)
		a.setStatus(models.AgentError)

		return &models.AnalysisReport{
			TaskID:          fmt.Sprintf("error-%d", time.Now().Unix()),
			Request:         request,
			Success:         false,
			Summary:         "execution failed due to an internal error",
			Insights:        []string{"could not complete execution due to an error"},
			Recommendations: []string{"retry the request"},
			StepsExecuted:   len(ctx.History),
			ExecutionTime:   time.Since(start).Seconds(),
			Error:           err.Error(),
		}
	}

	report := Synthesize(ctx)
	report.ExecutionTime = time.Since(start).Seconds()

	a.setStatus(models.AgentStopped)
	a.logger.Printf("task %s finished: %s", ctx.TaskID, report.Summary)

	return report
}

// executePlan drives the per-subtask loop. A panic here is an
// orchestration bug, not a tool failure: the context is marked FAILED and
// the panic is converted to an error for Execute to report.
func (a *Agent) executePlan(ctx *models.ExecutionContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.store.UpdateState(ctx, models.TaskStateFailed)
			err = fmt.Errorf("plan execution panicked: %v", r)
		}
	}()

	for _, subtask := range ctx.ExecutionPlan.SubTasks {
		a.logger.Printf("executing subtask %d: %s", subtask.ID, subtask.Description)

		if !a.dependenciesSatisfied(&subtask, ctx) {
			a.logger.Printf("dependencies not satisfied for subtask %d, skipping", subtask.ID)
			continue
		}

		for _, toolName := range subtask.Tools {
			if a.stopped() {
				a.logger.Printf("stop requested, terminating execution")
				return nil
			}

			args := a.determineToolArgs(toolName, ctx)
			result := a.executor.Execute(toolName, args)

			step := models.ExecutionStep{
				StepID:    len(ctx.History) + 1,
				ToolName:  toolName,
				ToolArgs:  args,
				Result:    result.Result,
				Timestamp: time.Now(),
				Success:   result.Success,
				Error:     result.Error,
			}
			a.store.AddStep(ctx, step)

			if result.Success && result.Result != nil {
				key := fmt.Sprintf("%s_%d", toolName, step.StepID)
				a.store.StoreResult(ctx, key, result.Result)
			}

			analysis := a.reasoner.AnalyzeResult(result, ctx)
			evaluation := a.reasoner.EvaluateState(ctx)
			decision := a.reasoner.MakeDecision(evaluation, ctx)

			a.logger.Printf("tool %s: success=%t analysis_confidence=%.2f decision=%s (%s)",
				toolName, result.Success, analysis.Confidence, decision.Action, decision.Reason)

			a.reasoner.AdjustPlan(decision, ctx)

			if decision.Action == models.ActionAbort {
				a.logger.Printf("aborting execution: %s", decision.Reason)
				a.store.UpdateState(ctx, models.TaskStateFailed)
				return nil
			}

			// Throttle backend load between tool calls
			if a.stepDelay > 0 {
				time.Sleep(a.stepDelay)
			}
		}

		ctx.CurrentStep++
	}

	return nil
}

// dependenciesSatisfied reports whether every dependency of a subtask has
// at least one successful history step using one of its tools.
func (a *Agent) dependenciesSatisfied(subtask *models.SubTask, ctx *models.ExecutionContext) bool {
	for _, depID := range subtask.Dependencies {
		var dep *models.SubTask
		for i := range ctx.ExecutionPlan.SubTasks {
			if ctx.ExecutionPlan.SubTasks[i].ID == depID {
				dep = &ctx.ExecutionPlan.SubTasks[i]
				break
			}
		}
		if dep == nil {
			return false
		}

		satisfied := false
		for _, step := range ctx.History {
			if !step.Success {
				continue
			}
			for _, tool := range dep.Tools {
				if step.ToolName == tool {
					satisfied = true
					break
				}
			}
			if satisfied {
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

// determineToolArgs resolves arguments from intermediate results keyed by
// parameter name. Most tools run with empty arguments and rely on their
// own defaults.
func (a *Agent) determineToolArgs(toolName string, ctx *models.ExecutionContext) map[string]interface{} {
	args := make(map[string]interface{})

	metadata, ok := a.registry.GetMetadata(toolName)
	if !ok {
		a.logger.Printf("tool not found in registry: %s", toolName)
		return args
	}

	for _, param := range metadata.Parameters {
		if value, ok := ctx.IntermediateResults[param.Name]; ok {
			args[param.Name] = value
		}
	}

	return args
}

// SubmitTask queues a request for the Run loop.
func (a *Agent) SubmitTask(request string) error {
	select {
	case a.queue <- request:
		a.logger.Printf("queued task: %s", request)
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Run processes queued requests one at a time until Stop is called.
func (a *Agent) Run() {
	a.logger.Printf("starting agent main loop")
	a.setStatus(models.AgentRunning)

	for {
		select {
		case <-a.stopCh:
			a.setStatus(models.AgentStopped)
			a.logger.Printf("agent main loop stopped")
			return
		case request := <-a.queue:
			a.Execute(request)
		}
	}
}

// Stop signals the loop to exit and drains pending tasks. It does not
// interrupt a tool call already in flight.
func (a *Agent) Stop() {
	a.logger.Printf("stopping agent")
	a.stopOnce.Do(func() { close(a.stopCh) })

	for {
		select {
		case <-a.queue:
		default:
			a.setStatus(models.AgentStopped)
			return
		}
	}
}

// Status returns the agent's current status.
func (a *Agent) Status() models.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Agent) setStatus(status models.AgentStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
}

func (a *Agent) stopped() bool {
	select {
	case <-a.stopCh:
		return true
	default:
		return false
	}
}
