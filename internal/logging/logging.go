// Package logging provides category-based logging for gauntlet.
// Each subsystem logs under its own named category; categories can be
// individually silenced from config so a noisy stage (the arena runs
// hundreds of subprocesses per pipeline) can be muted without losing
// the stage summaries.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config loading
	CategoryGenerate  Category = "generate"  // LLM generation calls
	CategoryArena     Category = "arena"     // Subprocess execution
	CategoryDebug     Category = "debug"     // Self-debug loop
	CategoryOracle    Category = "oracle"    // Oracle construction
	CategoryConsensus Category = "consensus" // Majority-vote selection
	CategoryPipeline  Category = "pipeline"  // Stage coordination
	CategoryStore     Category = "store"     // Run-history persistence
	CategoryWatch     Category = "watch"     // Problem-directory watching
)

var (
	mu         sync.RWMutex
	root       *zap.Logger
	categories map[string]bool // nil means all enabled
	loggers    map[Category]*zap.SugaredLogger
	nop        = zap.NewNop().Sugar()
)

// Initialize builds the process-wide logger. verbose enables debug level;
// enabled, when non-nil, overrides emission per category — categories it
// maps to false are silenced, and unlisted categories stay enabled. Safe
// to call more than once; the last call wins.
func Initialize(verbose bool, enabled map[string]bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	root = logger
	categories = enabled
	loggers = make(map[Category]*zap.SugaredLogger)
	return nil
}

// SetLogger swaps the backing logger. Used by tests to capture output.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Get returns the sugared logger for a category. Returns a no-op logger
// when logging is uninitialized or the category is disabled, so call
// sites never need nil checks.
func Get(c Category) *zap.SugaredLogger {
	mu.RLock()
	if root == nil || !enabledLocked(c) {
		mu.RUnlock()
		return nop
	}
	if l, ok := loggers[c]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}
	l := root.Named(string(c)).Sugar()
	loggers[c] = l
	return l
}

// Sync flushes buffered log entries. Call before process exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if root != nil {
		_ = root.Sync()
	}
}

func enabledLocked(c Category) bool {
	if categories == nil {
		return true
	}
	on, ok := categories[string(c)]
	if !ok {
		return true // enable by default if not listed
	}
	return on
}
