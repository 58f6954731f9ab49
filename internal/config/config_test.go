package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "python3", cfg.Execution.Interpreter)
	assert.Equal(t, int64(12), cfg.Execution.MaxConcurrent)
	assert.Equal(t, int64(6), cfg.Generation.MaxConcurrent)
	assert.Equal(t, 9, cfg.Pipeline.Candidates)
	assert.Equal(t, 5, cfg.Pipeline.Stress)
	assert.Equal(t, 2, cfg.Pipeline.MinAgree)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Pipeline, cfg.Pipeline)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gauntlet.yaml")
	content := `
generation:
  provider: gemini
  model: gemini-2.5-flash
  max_concurrent: 4
  timeout: 90s
execution:
  interpreter: pypy3
  max_concurrent: 20
  sample_timeout: 3s
pipeline:
  candidates: 12
  stress: 7
  min_agree: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Generation.Provider)
	assert.Equal(t, "pypy3", cfg.Execution.Interpreter)
	assert.Equal(t, int64(20), cfg.Execution.MaxConcurrent)
	assert.Equal(t, 12, cfg.Pipeline.Candidates)
	assert.Equal(t, 3, cfg.Pipeline.MinAgree)
	assert.Equal(t, 3*time.Second, cfg.Execution.SampleTimeoutDuration())
	assert.Equal(t, 90*time.Second, cfg.Generation.TimeoutDuration())
	// Untouched sections keep defaults.
	assert.Equal(t, 3, cfg.Pipeline.MaxDebugAttempts)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GAUNTLET_INTERPRETER", "sh")
	t.Setenv("GAUNTLET_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sh", cfg.Execution.Interpreter)
	assert.Equal(t, "gemini", cfg.Generation.Provider)
	assert.Equal(t, "test-key", cfg.Generation.APIKey)
}

func TestValidateRejectsBadLimits(t *testing.T) {
	cfg := Default()
	cfg.Execution.MaxConcurrent = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Pipeline.MinAgree = 0
	assert.Error(t, cfg.Validate())
}

func TestParseDurationFallback(t *testing.T) {
	tests := []struct {
		in       string
		fallback time.Duration
		want     time.Duration
	}{
		{"", time.Second, time.Second},
		{"bogus", time.Second, time.Second},
		{"-5s", time.Second, time.Second},
		{"250ms", time.Second, 250 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in, tt.fallback); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
