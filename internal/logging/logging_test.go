package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetBeforeInitializeIsNoop(t *testing.T) {
	mu.Lock()
	root = nil
	loggers = nil
	mu.Unlock()

	l := Get(CategoryArena)
	if l == nil {
		t.Fatal("Get returned nil logger")
	}
	// Must not panic.
	l.Infof("dropped message %d", 1)
}

func TestCategoryFiltering(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	if err := Initialize(true, map[string]bool{
		"arena":  false,
		"oracle": true,
	}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	SetLogger(zap.New(core))

	// Filtering is decided at Get time, not emit time.
	mu.Lock()
	categories = map[string]bool{"arena": false, "oracle": true}
	mu.Unlock()

	Get(CategoryArena).Info("should be dropped")
	Get(CategoryOracle).Info("should be kept")
	Get(CategoryPipeline).Info("unlisted categories default to enabled")

	if got := logs.Len(); got != 2 {
		t.Errorf("expected 2 entries, got %d: %+v", got, logs.All())
	}
}

func TestGetIsStablePerCategory(t *testing.T) {
	if err := Initialize(false, nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	a := Get(CategoryPipeline)
	b := Get(CategoryPipeline)
	if a != b {
		t.Error("expected the same logger instance for repeated Get calls")
	}
}
