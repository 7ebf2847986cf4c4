// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/specter-re/specter/internal/core/config"
	"github.com/specter-re/specter/internal/core/format"
)

func getExecuteCmd() *cobra.Command {
	var outputPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "execute <request>",
		Short: "Execute a single analysis request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			a, err := buildAgent(cfg)
			if err != nil {
				return fmt.Errorf("error building agent: %w", err)
			}

			report := a.Execute(args[0])

			if outputPath != "" {
				if err := format.WriteFile(outputPath, report); err != nil {
					return fmt.Errorf("error writing report: %w", err)
				}
				fmt.Printf("Report written to %s\n", outputPath)
				return nil
			}

			out, err := format.FormatData(report, !asJSON)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON instead of YAML")

	return cmd
}
