// Package config holds all gauntlet configuration. Configuration is read
// from a YAML file (gauntlet.yaml by default) and can be overridden with
// GAUNTLET_* environment variables for the settings that matter in CI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all gauntlet configuration.
type Config struct {
	// Generation configures the LLM generator collaborator.
	Generation GenerationConfig `yaml:"generation"`

	// Execution configures the subprocess arena.
	Execution ExecutionConfig `yaml:"execution"`

	// Pipeline configures stage sizing and thresholds.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Store configures run-history persistence.
	Store StoreConfig `yaml:"store"`

	// Logging configures category logging.
	Logging LoggingConfig `yaml:"logging"`
}

// GenerationConfig configures the LLM generator.
type GenerationConfig struct {
	Provider      string  `yaml:"provider"` // openai, gemini
	APIKey        string  `yaml:"api_key"`
	Model         string  `yaml:"model"`
	Temperature   float32 `yaml:"temperature"`
	MaxConcurrent int64   `yaml:"max_concurrent"`
	Timeout       string  `yaml:"timeout"`
}

// ExecutionConfig configures the subprocess arena. Generation and execution
// have different latency and cost profiles, so each carries its own
// concurrency limit; they must never share one.
type ExecutionConfig struct {
	Interpreter   string   `yaml:"interpreter"`    // command used to run candidate source
	Args          []string `yaml:"args"`           // extra interpreter args, before the source path
	SourceSuffix  string   `yaml:"source_suffix"`  // file suffix for materialized source
	MaxConcurrent int64    `yaml:"max_concurrent"` // global in-flight subprocess limit
	WorkDir       string   `yaml:"work_dir"`       // parent dir for transient execution dirs
	KeepArtifacts bool     `yaml:"keep_artifacts"` // keep execution dirs for debugging
	SampleTimeout string   `yaml:"sample_timeout"` // per-run deadline on sample tests
	StressTimeout string   `yaml:"stress_timeout"` // per-run deadline for stress programs
	JudgeTimeout  string   `yaml:"judge_timeout"`  // per-run deadline for filter/consensus
}

// PipelineConfig configures stage sizing and agreement thresholds.
type PipelineConfig struct {
	Candidates       int `yaml:"candidates"`         // solution candidates to generate
	Stress           int `yaml:"stress"`             // brute-force stress candidates
	MinAgree         int `yaml:"min_agree"`          // stress votes needed to trust an output
	MaxDebugAttempts int `yaml:"max_debug_attempts"` // revisions per candidate in self-debug
}

// StoreConfig configures run-history persistence.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite database path; empty disables the store
}

// LoggingConfig configures category logging.
type LoggingConfig struct {
	Verbose    bool            `yaml:"verbose"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Provider:      "openai",
			Model:         "", // provider default
			Temperature:   0.8,
			MaxConcurrent: 6,
			Timeout:       "2m",
		},
		Execution: ExecutionConfig{
			Interpreter:   "python3",
			SourceSuffix:  ".py",
			MaxConcurrent: 12,
			SampleTimeout: "2s",
			StressTimeout: "5s",
			JudgeTimeout:  "2s",
		},
		Pipeline: PipelineConfig{
			Candidates:       9,
			Stress:           5,
			MinAgree:         2,
			MaxDebugAttempts: 3,
		},
		Store: StoreConfig{
			Path: "gauntlet.db",
		},
	}
}

// Load reads configuration from a YAML file, starting from defaults.
// A missing file is not an error; defaults plus env overrides apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Execution.MaxConcurrent < 1 {
		return fmt.Errorf("execution.max_concurrent must be >= 1, got %d", c.Execution.MaxConcurrent)
	}
	if c.Generation.MaxConcurrent < 1 {
		return fmt.Errorf("generation.max_concurrent must be >= 1, got %d", c.Generation.MaxConcurrent)
	}
	if c.Pipeline.MinAgree < 1 {
		return fmt.Errorf("pipeline.min_agree must be >= 1, got %d", c.Pipeline.MinAgree)
	}
	if c.Pipeline.MaxDebugAttempts < 0 {
		return fmt.Errorf("pipeline.max_debug_attempts must be >= 0, got %d", c.Pipeline.MaxDebugAttempts)
	}
	return nil
}

// applyEnvOverrides layers environment variables over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GAUNTLET_PROVIDER"); v != "" {
		c.Generation.Provider = v
	}
	if v := os.Getenv("GAUNTLET_MODEL"); v != "" {
		c.Generation.Model = v
	}
	if v := os.Getenv("GAUNTLET_INTERPRETER"); v != "" {
		c.Execution.Interpreter = v
	}
	if v := os.Getenv("GAUNTLET_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("GAUNTLET_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.Verbose = b
		}
	}
	// API keys come from the environment when not set in the file.
	if c.Generation.APIKey == "" {
		switch c.Generation.Provider {
		case "gemini":
			c.Generation.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			c.Generation.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// SampleTimeoutDuration returns the parsed per-run sample-test deadline.
func (c *ExecutionConfig) SampleTimeoutDuration() time.Duration {
	return parseDuration(c.SampleTimeout, 2*time.Second)
}

// StressTimeoutDuration returns the parsed stress-program deadline.
func (c *ExecutionConfig) StressTimeoutDuration() time.Duration {
	return parseDuration(c.StressTimeout, 5*time.Second)
}

// JudgeTimeoutDuration returns the parsed filter/consensus deadline.
func (c *ExecutionConfig) JudgeTimeoutDuration() time.Duration {
	return parseDuration(c.JudgeTimeout, 2*time.Second)
}

// TimeoutDuration returns the parsed generation call deadline.
func (c *GenerationConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 2*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
