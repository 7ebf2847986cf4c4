// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"fmt"
	"log"

	"github.com/specter-re/specter/internal/agent/condition"
	"github.com/specter-re/specter/internal/core/format"
	"github.com/specter-re/specter/internal/core/models"
)

// OverlaySubTask is one subtask contributed by an overlay rule. Ids are
// assigned when the subtask is appended; dependencies default to the last
// subtask already in the plan.
type OverlaySubTask struct {
	Description    string   `yaml:"description" json:"description"`
	Tools          []string `yaml:"tools" json:"tools"`
	ExpectedOutput string   `yaml:"expected_output" json:"expected_output"`
	DependsOnLast  *bool    `yaml:"depends_on_last,omitempty" json:"depends_on_last,omitempty"`
}

// OverlayRule appends subtasks to a rule-generated plan when its CEL
// condition matches the request facts. An empty condition always matches.
type OverlayRule struct {
	Name      string           `yaml:"name" json:"name"`
	Condition string           `yaml:"condition,omitempty" json:"condition,omitempty"`
	SubTasks  []OverlaySubTask `yaml:"subtasks" json:"subtasks"`
}

// overlayFile is the on-disk shape of an overlay rule set.
type overlayFile struct {
	Rules []OverlayRule `yaml:"rules" json:"rules"`
}

// LoadOverlays reads overlay rules from a YAML or JSON file
func LoadOverlays(path string) ([]OverlayRule, error) {
	var file overlayFile
	if err := format.ParseFile(path, &file); err != nil {
		return nil, fmt.Errorf("error loading overlay rules: %w", err)
	}
	return file.Rules, nil
}

// applyOverlays appends subtasks from matching rules onto the plan. A rule
// whose condition fails to evaluate is skipped, not fatal.
func applyOverlays(plan *models.ExecutionPlan, rules []OverlayRule, request, intent string, logger *log.Logger) {
	evaluator, err := condition.NewEvaluator()
	if err != nil {
		if logger != nil {
			logger.Printf("overlay evaluator unavailable: %v", err)
		}
		return
	}

	for _, rule := range rules {
		if rule.Condition != "" {
			matched, err := evaluator.Evaluate(rule.Condition, request, intent, string(plan.TaskType))
			if err != nil {
				if logger != nil {
					logger.Printf("skipping overlay rule '%s': %v", rule.Name, err)
				}
				continue
			}
			if !matched {
				continue
			}
		}

		for _, st := range rule.SubTasks {
			next := len(plan.SubTasks) + 1

			var deps []int
			dependsOnLast := st.DependsOnLast == nil || *st.DependsOnLast
			if dependsOnLast && next > 1 {
				deps = []int{next - 1}
			}

			plan.SubTasks = append(plan.SubTasks, models.SubTask{
				ID:             next,
				Description:    st.Description,
				Tools:          st.Tools,
				ExpectedOutput: st.ExpectedOutput,
				Dependencies:   deps,
			})
		}
	}
}
