// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/specter-re/specter/internal/core/catalog"
	"github.com/specter-re/specter/internal/core/config"
)

func getToolsCmd() *cobra.Command {
	var category string
	var search string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available analysis tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			registry, err := buildRegistry(cfg)
			if err != nil {
				return fmt.Errorf("error building tool registry: %w", err)
			}

			var list []catalog.ToolMetadata
			switch {
			case search != "":
				list = registry.Search(search)
			case category != "":
				list = registry.ListByCategory(catalog.ToolCategory(category))
			default:
				list = registry.ListTools()
			}

			for _, metadata := range list {
				marker := ""
				if metadata.Destructive {
					marker = " [destructive]"
				}
				fmt.Printf("%-26s %-18s %s%s\n", metadata.Name, metadata.Category, metadata.Description, marker)
			}
			fmt.Printf("\n%d tools\n", len(list))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list tools in this category")
	cmd.Flags().StringVar(&search, "search", "", "Only list tools matching this query")

	return cmd
}
