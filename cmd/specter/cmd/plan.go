// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/specter-re/specter/internal/agent/planner"
	"github.com/specter-re/specter/internal/core/config"
	"github.com/specter-re/specter/internal/core/format"
)

func getPlanCmd() *cobra.Command {
	var outputPath string
	var rulesOnly bool

	cmd := &cobra.Command{
		Use:   "plan <request>",
		Short: "Generate an execution plan without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if rulesOnly {
				cfg.LLM.Enabled = false
			}

			logger := log.New(os.Stderr, "[specter] ", log.LstdFlags)

			registry, err := buildRegistry(cfg)
			if err != nil {
				return fmt.Errorf("error building tool registry: %w", err)
			}

			p, err := buildPlanner(cfg, registry, logger)
			if err != nil {
				return fmt.Errorf("error building planner: %w", err)
			}

			plan := p.Plan(args[0])
			if err := planner.ValidatePlan(plan); err != nil {
				return fmt.Errorf("generated plan is invalid: %w", err)
			}

			if outputPath != "" {
				if err := planner.SavePlan(plan, outputPath); err != nil {
					return fmt.Errorf("error saving plan: %w", err)
				}
				fmt.Printf("Plan written to %s\n", outputPath)
				return nil
			}

			out, err := format.FormatData(plan, true)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the plan to a file")
	cmd.Flags().BoolVar(&rulesOnly, "rules-only", false, "Skip the model and use rule-based planning")

	return cmd
}
