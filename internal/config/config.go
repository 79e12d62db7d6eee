// Package config provides configuration loading and management for ctagent.
package config

import (
	"fmt"
	"strings"
)

// Supported collaborator providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Config is the root configuration.
type Config struct {
	LLM   LLMConfig `json:"llm"   mapstructure:"llm"`
	Paths Paths     `json:"paths" mapstructure:"paths"`
}

// LLMConfig selects and tunes the completion collaborator. It is passed into
// the client constructor explicitly; business logic never reads the process
// environment for provider selection.
type LLMConfig struct {
	Provider       string `json:"provider"                  mapstructure:"provider"`
	Model          string `json:"model,omitempty"           mapstructure:"model"`
	BaseURL        string `json:"base_url,omitempty"        mapstructure:"base_url"`
	APIKeyEnv      string `json:"api_key_env,omitempty"     mapstructure:"api_key_env"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" mapstructure:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries,omitempty"     mapstructure:"max_retries"`
}

// Paths locates the shared workflow state files.
type Paths struct {
	Checklist         string `json:"checklist,omitempty"          mapstructure:"checklist"`
	ProgressLogsNew   string `json:"progress_logs_new,omitempty"  mapstructure:"progress_logs_new"`
	ProgressLogsDone  string `json:"progress_logs_done,omitempty" mapstructure:"progress_logs_done"`
	ActionItems       string `json:"action_items,omitempty"       mapstructure:"action_items"`
	OutputDir         string `json:"output_dir,omitempty"         mapstructure:"output_dir"`
	NextActionsReport string `json:"next_actions,omitempty"       mapstructure:"next_actions"`
	ProgressReport    string `json:"progress_report,omitempty"    mapstructure:"progress_report"`
}

// Defaults fills unset fields with the conventional repository layout.
func (c *Config) Defaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderNone
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	}
	if c.Paths.Checklist == "" {
		c.Paths.Checklist = "config/checklist.yml"
	}
	if c.Paths.ProgressLogsNew == "" {
		c.Paths.ProgressLogsNew = "PROGRESS_LOGS/new"
	}
	if c.Paths.ProgressLogsDone == "" {
		c.Paths.ProgressLogsDone = "PROGRESS_LOGS/processed"
	}
	if c.Paths.ActionItems == "" {
		c.Paths.ActionItems = "ACTION_ITEMS"
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = "output"
	}
	if c.Paths.NextActionsReport == "" {
		c.Paths.NextActionsReport = "NEXT_ACTIONS.md"
	}
	if c.Paths.ProgressReport == "" {
		c.Paths.ProgressReport = "PROGRESS.md"
	}
}

// Validate checks semantic constraints the schema cannot express.
func (c Config) Validate() error {
	switch strings.TrimSpace(c.LLM.Provider) {
	case ProviderOpenAI, ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Provider != ProviderNone && strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("llm.model is required for provider %q", c.LLM.Provider)
	}
	if c.LLM.MaxRetries > 1 {
		return fmt.Errorf("llm.max_retries must be 0 or 1")
	}
	return nil
}
