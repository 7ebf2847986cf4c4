// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/specter-re/specter/internal/agent"
	"github.com/specter-re/specter/internal/agent/executor"
	"github.com/specter-re/specter/internal/agent/planner"
	"github.com/specter-re/specter/internal/agent/reasoning"
	"github.com/specter-re/specter/internal/agent/store"
	"github.com/specter-re/specter/internal/backend"
	"github.com/specter-re/specter/internal/core/catalog"
	"github.com/specter-re/specter/internal/core/config"
	"github.com/specter-re/specter/internal/llm"
	"github.com/specter-re/specter/internal/tools"
	"github.com/specter-re/specter/internal/version"
)

var configPath string

// Create the root command
var rootCmd = &cobra.Command{
	Use:   "specter",
	Short: "Specter - Reverse-Engineering Task Orchestration Agent",
	Long: `Specter turns a free-form reverse-engineering request into an ordered,
dependency-aware plan of analysis operations, drives execution against a
remote analysis backend, and adapts when steps fail.`,
	Version: fmt.Sprintf("%s (commit: %s)", version.Version, version.Commit),
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	rootCmd.AddCommand(getExecuteCmd())
	rootCmd.AddCommand(getPlanCmd())
	rootCmd.AddCommand(getRunCmd())
	rootCmd.AddCommand(getToolsCmd())
}

// buildRegistry creates the tool registry wired to the backend
func buildRegistry(cfg *config.Config) (*catalog.Registry, error) {
	client := backend.NewClient(cfg.Backend.Host, cfg.Backend.Port, cfg.Backend.ConnectRetries, cfg.Backend.RetryDelay)

	registry := catalog.NewRegistry()
	if err := tools.Register(registry, client); err != nil {
		return nil, err
	}
	return registry, nil
}

// buildPlanner creates the planner with the configured strategies
func buildPlanner(cfg *config.Config, registry *catalog.Registry, logger *log.Logger) (*planner.Planner, error) {
	var overlays []planner.OverlayRule
	if cfg.Planner.OverlayPath != "" {
		loaded, err := planner.LoadOverlays(cfg.Planner.OverlayPath)
		if err != nil {
			return nil, err
		}
		overlays = loaded
	}

	fallback := planner.NewRuleStrategy(overlays, logger)

	var primary planner.Strategy
	if cfg.LLM.Enabled {
		client := llm.NewOllamaClient(cfg.LLM.Host, cfg.LLM.Port, cfg.LLM.Model, cfg.LLM.Timeout)
		var toolNames []string
		for _, metadata := range registry.ListTools() {
			toolNames = append(toolNames, metadata.Name)
		}
		primary = planner.NewModelStrategy(client, toolNames)
	}

	return planner.New(primary, fallback, logger), nil
}

// buildAgent wires a full agent from the configuration
func buildAgent(cfg *config.Config) (*agent.Agent, error) {
	logger := log.New(os.Stderr, "[specter] ", log.LstdFlags)

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	p, err := buildPlanner(cfg, registry, logger)
	if err != nil {
		return nil, err
	}

	var chatClient llm.ChatClient
	if cfg.LLM.Enabled {
		chatClient = llm.NewOllamaClient(cfg.LLM.Host, cfg.LLM.Port, cfg.LLM.Model, cfg.LLM.Timeout)
	}
	reasoner := reasoning.New(chatClient, logger)

	contexts := store.New(store.Options{
		MaxContexts: cfg.Store.MaxContexts,
		TTL:         cfg.Store.TTL,
	})

	exec := executor.New(registry)

	return agent.New(cfg.Agent, p, reasoner, contexts, exec, registry, logger), nil
}
