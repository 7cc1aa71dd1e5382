// Package config loads and persists ARIA configuration.
// Configuration lives in <workspace>/.aria/config.yaml and every field has a
// working default, so a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ARIA configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Decision engine settings
	Decision DecisionConfig `yaml:"decision"`

	// Wake-word listener settings
	Listener ListenerConfig `yaml:"listener"`

	// Persistence
	Storage StorageConfig `yaml:"storage"`

	// Knowledge base override
	Knowledge KnowledgeConfig `yaml:"knowledge"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DecisionConfig configures intent resolution and action selection.
type DecisionConfig struct {
	// Minimum confidence for acting without asking back.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// How many candidate intents a low-confidence clarification lists.
	MaxAlternatives int `yaml:"max_alternatives"`
	// How many recent turns the session context retains.
	ContextWindow int `yaml:"context_window"`
	// When false, action-preference counters are neither read nor written.
	LearningEnabled bool `yaml:"learning_enabled"`
}

// ListenerConfig configures the background wake-word listener. The listener
// consumes text transcripts (e.g. from a speech-to-text pipe), never audio.
type ListenerConfig struct {
	Enabled        bool     `yaml:"enabled"`
	WakeWords      []string `yaml:"wake_words"`
	CommandTimeout string   `yaml:"command_timeout"` // capture window after a wake word
	TranscriptPath string   `yaml:"transcript_path"` // file or FIFO of transcript lines
}

// StorageConfig configures SQLite persistence.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// KnowledgeConfig points at an optional YAML knowledge base that replaces the
// built-in intent/action table.
type KnowledgeConfig struct {
	Path      string `yaml:"path"`
	HotReload bool   `yaml:"hot_reload"`
}

// LoggingConfig configures the category file loggers.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Name:    "aria",
		Version: "1.0.0",
		Decision: DecisionConfig{
			ConfidenceThreshold: 0.7,
			MaxAlternatives:     3,
			ContextWindow:       5,
			LearningEnabled:     true,
		},
		Listener: ListenerConfig{
			Enabled:        false,
			WakeWords:      []string{"aria"},
			CommandTimeout: "5s",
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(".aria", "aria.db"),
		},
		Knowledge: KnowledgeConfig{
			HotReload: true,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads config.yaml from the workspace, filling gaps with defaults.
// A missing file returns defaults and writes them back for discoverability.
func Load(workspace string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(workspace, ".aria", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Best effort: persist the defaults so the user can edit them.
			_ = cfg.Save(workspace)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to <workspace>/.aria/config.yaml.
func (c *Config) Save(workspace string) error {
	dir := filepath.Join(workspace, ".aria")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644)
}

func (c *Config) validate() error {
	if c.Decision.ConfidenceThreshold < 0 || c.Decision.ConfidenceThreshold > 1 {
		return fmt.Errorf("decision.confidence_threshold must be in [0,1], got %v", c.Decision.ConfidenceThreshold)
	}
	if c.Decision.MaxAlternatives < 1 {
		return fmt.Errorf("decision.max_alternatives must be >= 1, got %d", c.Decision.MaxAlternatives)
	}
	if c.Decision.ContextWindow < 1 {
		return fmt.Errorf("decision.context_window must be >= 1, got %d", c.Decision.ContextWindow)
	}
	if _, err := c.CommandTimeout(); err != nil {
		return err
	}
	return nil
}

// CommandTimeout parses the listener capture window.
func (c *Config) CommandTimeout() (time.Duration, error) {
	if c.Listener.CommandTimeout == "" {
		return 5 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Listener.CommandTimeout)
	if err != nil {
		return 0, fmt.Errorf("listener.command_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("listener.command_timeout must be positive, got %v", d)
	}
	return d, nil
}

// FindWorkspaceRoot walks up from the current directory looking for an .aria
// marker directory. Falls back to the current directory.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for d := dir; ; {
		if info, err := os.Stat(filepath.Join(d, ".aria")); err == nil && info.IsDir() {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return dir, nil
		}
		d = parent
	}
}
