// Package config loads reactcoder settings from a YAML file, environment
// overrides and built-in defaults, in increasing order of precedence:
// defaults, then file, then environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "reactcoder.yaml"

// Config is the full reactcoder configuration.
type Config struct {
	LLM       LLMConfig      `yaml:"llm"`
	Workflows WorkflowConfig `yaml:"workflows"`
	Logging   LoggingConfig  `yaml:"logging"`
	Storage   StorageConfig  `yaml:"storage"`
	Sandbox   SandboxConfig  `yaml:"sandbox"`
}

// LLMConfig selects the model backend. RouterModel, when set and different
// from Model, is used for workflow routing only.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	RouterModel string        `yaml:"router_model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	Debug       bool          `yaml:"debug"`
}

// WorkflowConfig tunes workflow execution.
type WorkflowConfig struct {
	Default       string        `yaml:"default"`
	MaxIterations int           `yaml:"max_iterations"`
	GrepTimeout   time.Duration `yaml:"grep_timeout"`
}

// LoggingConfig describes log output. An empty File logs to stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// StorageConfig controls where exchange logs and transcripts go.
// ExchangeStore is "file", "sqlite" or "both".
type StorageConfig struct {
	LogDir        string `yaml:"log_dir"`
	ExchangeStore string `yaml:"exchange_store"`
	SQLitePath    string `yaml:"sqlite_path"`
	TelemetryFile string `yaml:"telemetry_file"`
}

// SandboxConfig locates sandboxes and source projects.
type SandboxConfig struct {
	Root         string `yaml:"root"`
	ProjectsRoot string `yaml:"projects_root"`
}

// Default returns the built-in configuration: a local OpenAI-compatible
// server (LM Studio) and the simple workflow as fallback.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			BaseURL:     "http://localhost:1234/v1",
			APIKey:      "lm-studio",
			Model:       "qwen3-coder-30b-a3b-instruct-mlx",
			Temperature: 0.1,
			MaxTokens:   4096,
			Timeout:     3 * time.Minute,
		},
		Workflows: WorkflowConfig{
			Default:       "simple_modification",
			MaxIterations: 25,
			GrepTimeout:   5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{
			LogDir:        "logs",
			ExchangeStore: "file",
			SQLitePath:    filepath.Join("logs", "exchanges.db"),
		},
		Sandbox: SandboxConfig{Root: "temp_sessions", ProjectsRoot: ".."},
	}
}

// Load reads path on top of the defaults. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config missing")
	}
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from environment variables read via getenv.
// Malformed numeric values are reported and leave the field unchanged.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set("LLM_PROVIDER", &c.LLM.Provider)
	set("LLM_BASE_URL", &c.LLM.BaseURL)
	set("LLM_API_KEY", &c.LLM.APIKey)
	set("LLM_MODEL", &c.LLM.Model)
	set("ROUTER_LLM_MODEL", &c.LLM.RouterModel)
	set("REACTCODER_LOG_LEVEL", &c.Logging.Level)
	set("REACTCODER_LOG_DIR", &c.Storage.LogDir)

	var errs []error
	if v := strings.TrimSpace(getenv("LLM_MAX_TOKENS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS: %w", err))
		} else {
			c.LLM.MaxTokens = n
		}
	}
	return errors.Join(errs...)
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.LLM.Provider) {
	case "", "openai", "ollama":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q must be openai or ollama", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, errors.New("llm.max_tokens must not be negative"))
	}
	if c.Workflows.MaxIterations <= 0 {
		errs = append(errs, errors.New("workflows.max_iterations must be positive"))
	}
	switch c.Storage.ExchangeStore {
	case "", "file", "sqlite", "both":
	default:
		errs = append(errs, fmt.Errorf("storage.exchange_store %q must be file, sqlite or both", c.Storage.ExchangeStore))
	}
	if c.Sandbox.Root == "" {
		errs = append(errs, errors.New("sandbox.root is required"))
	}
	return errors.Join(errs...)
}

// RouterModelName returns the model name to route with: RouterModel when set,
// else Model.
func (c LLMConfig) RouterModelName() string {
	if c.RouterModel != "" {
		return c.RouterModel
	}
	return c.Model
}

// ExpandPath resolves a leading ~ against the home directory.
func ExpandPath(path string) string { return expandPath(path) }

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
