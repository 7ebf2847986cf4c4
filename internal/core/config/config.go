// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BackendConfig holds connection settings for the analysis backend.
type BackendConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ConnectRetries int           `yaml:"connect_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
}

// LLMConfig holds settings for the local inference server.
type LLMConfig struct {
	Enabled bool          `yaml:"enabled"`
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// AgentConfig holds orchestrator loop settings.
type AgentConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	StepDelay  time.Duration `yaml:"step_delay"`
	QueueSize  int           `yaml:"queue_size"`
}

// StoreConfig holds context store eviction settings. Both limits are
// disabled when zero.
type StoreConfig struct {
	MaxContexts int           `yaml:"max_contexts"`
	TTL         time.Duration `yaml:"ttl"`
}

// PlannerConfig holds planner settings.
type PlannerConfig struct {
	OverlayPath string `yaml:"overlay_path"`
}

// Config is the full application configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	LLM     LLMConfig     `yaml:"llm"`
	Agent   AgentConfig   `yaml:"agent"`
	Store   StoreConfig   `yaml:"store"`
	Planner PlannerConfig `yaml:"planner"`
}

// NewDefaultConfig returns a configuration with reasonable defaults
func NewDefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			ConnectRetries: 3,
			RetryDelay:     time.Second,
		},
		LLM: LLMConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    11434,
			Model:   "llama3.1:8b",
			Timeout: 30 * time.Second,
		},
		Agent: AgentConfig{
			MaxRetries: 3,
			StepDelay:  100 * time.Millisecond,
			QueueSize:  128,
		},
		Store: StoreConfig{
			MaxContexts: 0,
			TTL:         0,
		},
		Planner: PlannerConfig{},
	}
}

// LoadConfig loads configuration from a YAML file, merged over the defaults.
// A missing path returns the defaults unchanged.
func LoadConfig(configPath string) (*Config, error) {
	config := NewDefaultConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal directly over the defaults so unset fields keep their values
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}
