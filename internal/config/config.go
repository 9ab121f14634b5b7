// Package config loads the startup configuration. All values are read once
// at process start; API keys come from the environment, never from the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full startup configuration surface.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`

	Provider      string `json:"provider" yaml:"provider"` // ollama, openai, gemini, stub
	Model         string `json:"model" yaml:"model"`
	OpenAIBaseURL string `json:"openai_base_url" yaml:"openai_base_url"`

	ClassifyThreshold float64 `json:"classify_threshold" yaml:"classify_threshold"`
	HistoryLimit      int     `json:"history_limit" yaml:"history_limit"`
	BackupRetention   int     `json:"backup_retention" yaml:"backup_retention"`

	InterviewQuestions int `json:"interview_questions" yaml:"interview_questions"`
	SessionIdleSeconds int `json:"session_idle_seconds" yaml:"session_idle_seconds"`

	ProviderTimeoutSeconds int `json:"provider_timeout_seconds" yaml:"provider_timeout_seconds"`
	RetryBackoffMillis     int `json:"retry_backoff_millis" yaml:"retry_backoff_millis"`

	Verbose bool `json:"verbose" yaml:"verbose"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataDir:                defaultDataDir(),
		Provider:               "ollama",
		ClassifyThreshold:      0.3,
		HistoryLimit:           50,
		BackupRetention:        10,
		InterviewQuestions:     5,
		SessionIdleSeconds:     1800,
		ProviderTimeoutSeconds: 30,
		RetryBackoffMillis:     500,
	}
}

// Load reads a configuration file (JSON or YAML) over the defaults. A
// missing path is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s (use .json or .yaml)", ext)
	}

	cfg.applyFloors()
	return cfg, nil
}

// applyFloors pulls out-of-range values back to the defaults rather than
// rejecting the file.
func (c *Config) applyFloors() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Provider == "" {
		c.Provider = def.Provider
	}
	if c.ClassifyThreshold <= 0 || c.ClassifyThreshold >= 1 {
		c.ClassifyThreshold = def.ClassifyThreshold
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.BackupRetention <= 0 {
		c.BackupRetention = def.BackupRetention
	}
	if c.InterviewQuestions <= 0 {
		c.InterviewQuestions = def.InterviewQuestions
	}
	if c.SessionIdleSeconds <= 0 {
		c.SessionIdleSeconds = def.SessionIdleSeconds
	}
	if c.ProviderTimeoutSeconds <= 0 {
		c.ProviderTimeoutSeconds = def.ProviderTimeoutSeconds
	}
	if c.RetryBackoffMillis <= 0 {
		c.RetryBackoffMillis = def.RetryBackoffMillis
	}
}

// SessionIdleTimeout returns the idle window as a duration.
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleSeconds) * time.Second
}

// ProviderTimeout returns the per-call provider bound as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// RetryBackoff returns the pause before the provider retry.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMillis) * time.Millisecond
}

// OpenAIKey reads the OpenAI credential from the environment.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// GeminiKey reads the Gemini credential from the environment.
func GeminiKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".careermate")
	}
	return ".careermate"
}
