// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// AgentConfig bounds the step loop.
type AgentConfig struct {
	MaxSteps            int    `json:"max_steps" env:"OSPILOT_MAX_STEPS"`
	ImagesToKeep        int    `json:"images_to_keep" env:"OSPILOT_IMAGES_TO_KEEP"`
	MinRemovalThreshold int    `json:"min_removal_threshold" env:"OSPILOT_MIN_REMOVAL_THRESHOLD"`
	MaxAttempts         int    `json:"max_attempts" env:"OSPILOT_MAX_ATTEMPTS"`
	StepDelaySeconds    int    `json:"step_delay_seconds" env:"OSPILOT_STEP_DELAY_SECONDS"`
	OnNoAction          string `json:"on_no_action" env:"OSPILOT_ON_NO_ACTION"`
}

// Config is the full runtime configuration. Values load in order:
// defaults, then the JSON config file, then environment overrides.
type Config struct {
	Provider  string      `json:"provider" env:"OSPILOT_PROVIDER"`
	Dialect   string      `json:"dialect" env:"OSPILOT_DIALECT"`
	Model     string      `json:"model" env:"OSPILOT_MODEL"`
	APIKey    string      `json:"api_key" env:"OSPILOT_API_KEY"`
	APIBase   string      `json:"api_base" env:"OSPILOT_API_BASE"`
	DeviceURL string      `json:"device_url" env:"OSPILOT_DEVICE_URL"`
	TasksDir  string      `json:"tasks_dir" env:"OSPILOT_TASKS_DIR"`
	LogLevel  string      `json:"log_level" env:"OSPILOT_LOG_LEVEL"`
	Agent     AgentConfig `json:"agent"`
}

func defaults() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Dialect:   "claude",
		DeviceURL: "ws://localhost:8765/device",
		TasksDir:  filepath.Join(home, ".ospilot", "tasks"),
		LogLevel:  "info",
		Agent: AgentConfig{
			MaxSteps:            30,
			ImagesToKeep:        3,
			MinRemovalThreshold: 2,
			MaxAttempts:         5,
			StepDelaySeconds:    2,
			OnNoAction:          "continue",
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ospilot", "config.json")
}

// Load reads configuration from path (or the default location) and
// applies environment overrides. A missing file is not an error; the
// defaults plus environment stand alone.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields a task run cannot proceed without.
func (c *Config) Validate() error {
	if c.Dialect == "" {
		return fmt.Errorf("dialect is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required (set OSPILOT_API_KEY)")
	}
	if c.DeviceURL == "" {
		return fmt.Errorf("device_url is required")
	}
	return nil
}
