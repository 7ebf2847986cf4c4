// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"fmt"

	"github.com/specter-re/specter/internal/core/format"
	"github.com/specter-re/specter/internal/core/models"
)

// SavePlan writes a plan to a file, format chosen by extension
func SavePlan(plan *models.ExecutionPlan, path string) error {
	return format.WriteFile(path, plan)
}

// LoadPlan reads and validates a plan file
func LoadPlan(path string) (*models.ExecutionPlan, error) {
	var plan models.ExecutionPlan
	if err := format.ParseFile(path, &plan); err != nil {
		return nil, fmt.Errorf("error loading plan: %w", err)
	}
	if err := ValidatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ValidatePlan checks a plan for structural problems: missing subtasks,
// duplicate ids, self-dependencies, unknown dependencies and cycles.
func ValidatePlan(plan *models.ExecutionPlan) error {
	if plan == nil || len(plan.SubTasks) == 0 {
		return fmt.Errorf("plan has no subtasks")
	}

	ids := make(map[int]bool)
	for _, st := range plan.SubTasks {
		if ids[st.ID] {
			return fmt.Errorf("duplicate subtask id: %d", st.ID)
		}
		ids[st.ID] = true
	}

	for _, st := range plan.SubTasks {
		for _, dep := range st.Dependencies {
			if dep == st.ID {
				return fmt.Errorf("subtask %d depends on itself", st.ID)
			}
			if !ids[dep] {
				return fmt.Errorf("subtask %d depends on unknown subtask %d", st.ID, dep)
			}
		}
	}

	if cycle := findCycle(plan); cycle != nil {
		return fmt.Errorf("dependency cycle detected: %v", cycle)
	}

	return nil
}

// findCycle runs a DFS over the dependency graph and returns one cycle if
// any exists
func findCycle(plan *models.ExecutionPlan) []int {
	deps := make(map[int][]int)
	for _, st := range plan.SubTasks {
		deps[st.ID] = st.Dependencies
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[int]int)

	var path []int
	var visit func(id int) []int
	visit = func(id int) []int {
		switch state[id] {
		case visiting:
			// Found a back edge; extract the cycle from the current path
			for i, p := range path {
				if p == id {
					return append(append([]int{}, path[i:]...), id)
				}
			}
			return []int{id}
		case done:
			return nil
		}

		state[id] = visiting
		path = append(path, id)
		for _, dep := range deps[id] {
			if cycle := visit(dep); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for _, st := range plan.SubTasks {
		if cycle := visit(st.ID); cycle != nil {
			return cycle
		}
	}
	return nil
}
