// SPDX-License-Identifier: Apache-2.0

// Package store owns the live execution contexts for in-flight requests.
// Context mutation is single-threaded by design (one worker drives one
// context at a time); only the registry map itself is locked.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specter-re/specter/internal/core/models"
)

// Options configures context eviction. Both limits are disabled at zero,
// matching the default behavior of keeping contexts until removed.
type Options struct {
	MaxContexts int
	TTL         time.Duration
}

type entry struct {
	ctx     *models.ExecutionContext
	created time.Time
}

// Store is the registry of execution contexts, looked up by task id.
type Store struct {
	mu       sync.RWMutex
	contexts map[string]*entry
	opts     Options
}

// New creates a context store
func New(opts Options) *Store {
	return &Store{
		contexts: make(map[string]*entry),
		opts:     opts,
	}
}

// CreateContext allocates a context for a request and registers it. The
// context starts PENDING and is immediately moved to RUNNING.
func (s *Store) CreateContext(request string, plan *models.ExecutionPlan) *models.ExecutionContext {
	taskID := plan.TaskID
	if taskID == "" {
		taskID = uuid.New().String()
	}

	ctx := &models.ExecutionContext{
		TaskID:              taskID,
		UserRequest:         request,
		ExecutionPlan:       plan,
		CurrentStep:         0,
		History:             []models.ExecutionStep{},
		IntermediateResults: make(map[string]interface{}),
		State:               models.TaskStatePending,
	}
	ctx.State = models.TaskStateRunning

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	s.contexts[taskID] = &entry{ctx: ctx, created: time.Now()}

	return ctx
}

// AddStep appends a step to the context's history and advances the step
// cursor. History is append-only.
func (s *Store) AddStep(ctx *models.ExecutionContext, step models.ExecutionStep) {
	ctx.History = append(ctx.History, step)
	ctx.CurrentStep++
}

// StoreResult saves an intermediate result; last write for a key wins.
func (s *Store) StoreResult(ctx *models.ExecutionContext, key string, value interface{}) {
	ctx.IntermediateResults[key] = value
}

// GetResult looks up an intermediate result by key.
func (s *Store) GetResult(ctx *models.ExecutionContext, key string) (interface{}, bool) {
	value, ok := ctx.IntermediateResults[key]
	return value, ok
}

// UpdateState overwrites the context state. Transition legality is the
// orchestrator's responsibility.
func (s *Store) UpdateState(ctx *models.ExecutionContext, state models.TaskState) {
	ctx.State = state
}

// GetContext looks up a context by task id
func (s *Store) GetContext(taskID string) (*models.ExecutionContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.contexts[taskID]
	if !ok {
		return nil, false
	}
	return e.ctx, true
}

// GetActiveContexts returns contexts that are pending or running
func (s *Store) GetActiveContexts() []*models.ExecutionContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*models.ExecutionContext
	for _, e := range s.contexts {
		if e.ctx.State == models.TaskStatePending || e.ctx.State == models.TaskStateRunning {
			active = append(active, e.ctx)
		}
	}
	return active
}

// RemoveContext removes a context by task id; idempotent.
func (s *Store) RemoveContext(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contexts[taskID]; !ok {
		return false
	}
	delete(s.contexts, taskID)
	return true
}

// Len returns the number of registered contexts
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}

// evictLocked applies the TTL and capacity policies. Only terminal
// contexts are ever evicted; live contexts are never dropped.
func (s *Store) evictLocked() {
	if s.opts.TTL > 0 {
		cutoff := time.Now().Add(-s.opts.TTL)
		for id, e := range s.contexts {
			if e.ctx.State.IsTerminal() && e.created.Before(cutoff) {
				delete(s.contexts, id)
			}
		}
	}

	if s.opts.MaxContexts <= 0 {
		return
	}

	for len(s.contexts) >= s.opts.MaxContexts {
		oldestID := ""
		var oldest time.Time
		for id, e := range s.contexts {
			if !e.ctx.State.IsTerminal() {
				continue
			}
			if oldestID == "" || e.created.Before(oldest) {
				oldestID = id
				oldest = e.created
			}
		}
		if oldestID == "" {
			return
		}
		delete(s.contexts, oldestID)
	}
}
