// SPDX-License-Identifier: Apache-2.0

// Package executor dispatches tool invocations against the catalog. Every
// outcome, including panics and policy denials, is normalized into a
// ToolResult; execution never raises.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specter-re/specter/internal/core/catalog"
	"github.com/specter-re/specter/internal/core/models"
)

// ToolCall names one tool invocation for batch execution.
type ToolCall struct {
	Name string
	Args map[string]interface{}
}

// Executor validates, permission-checks and invokes tools.
type Executor struct {
	registry *catalog.Registry
}

// New creates a tool executor over a registry
func New(registry *catalog.Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs one tool and returns its normalized result
func (e *Executor) Execute(name string, args map[string]interface{}) models.ToolResult {
	return e.ExecuteWithContext(context.Background(), name, args)
}

// ExecuteWithContext runs one tool, honoring cancellation checked before
// the invocation (never mid-call).
func (e *Executor) ExecuteWithContext(ctx context.Context, name string, args map[string]interface{}) models.ToolResult {
	start := time.Now()
	fail := func(format string, a ...interface{}) models.ToolResult {
		return models.ToolResult{
			ToolName:      name,
			Success:       false,
			Error:         fmt.Sprintf(format, a...),
			ExecutionTime: time.Since(start).Seconds(),
		}
	}

	tool, ok := e.registry.GetTool(name)
	if !ok {
		return fail("unknown tool: %s", name)
	}

	if err := e.registry.ValidateParameters(name, args); err != nil {
		return fail("invalid arguments for '%s': %v", name, err)
	}

	// Destructive tools run only when pre-approved
	if tool.Metadata.Destructive && !tool.Metadata.RequiresApproval {
		return fail("tool '%s' is destructive and not approved for execution", name)
	}

	if err := ctx.Err(); err != nil {
		return fail("execution cancelled: %v", err)
	}

	return e.invoke(tool, name, args, start)
}

// invoke calls the tool function, converting a panic into a failed result
func (e *Executor) invoke(tool catalog.Tool, name string, args map[string]interface{}, start time.Time) (result models.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.ToolResult{
				ToolName:      name,
				Success:       false,
				Error:         fmt.Sprintf("tool '%s' panicked: %v", name, r),
				ExecutionTime: time.Since(start).Seconds(),
			}
		}
	}()

	value, err := tool.Func(args)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		return models.ToolResult{
			ToolName:      name,
			Success:       false,
			Error:         err.Error(),
			ExecutionTime: elapsed,
		}
	}

	return models.ToolResult{
		ToolName:      name,
		Success:       true,
		Result:        value,
		ExecutionTime: elapsed,
	}
}

// ExecuteBatch runs independent tool calls concurrently and collects every
// result in input order. One failure never cancels the others.
func (e *Executor) ExecuteBatch(ctx context.Context, calls []ToolCall) []models.ToolResult {
	results := make([]models.ToolResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ToolCall) {
			defer wg.Done()
			results[i] = e.ExecuteWithContext(ctx, call.Name, call.Args)
		}(i, call)
	}
	wg.Wait()

	return results
}
