// Package arena executes candidate programs in transient sandboxed
// directories under a deadline and a global concurrency limit.
//
// WARNING: candidate code is untrusted. The arena confines disk artifacts
// to a transient directory and enforces deadlines, but it is not an
// isolation boundary; run the whole pipeline inside a container or VM.
package arena

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"gauntlet/internal/logging"
)

// Config holds executor configuration.
type Config struct {
	// Interpreter is the command that runs candidate source (e.g. python3).
	Interpreter string
	// Args are extra interpreter arguments placed before the source path.
	Args []string
	// SourceSuffix is appended to the materialized source file name.
	SourceSuffix string
	// MaxConcurrent bounds in-flight subprocesses across all callers.
	MaxConcurrent int64
	// WorkDir is the parent directory for transient execution dirs.
	// Empty means the system temp directory.
	WorkDir string
	// KeepArtifacts keeps execution dirs on disk for debugging.
	KeepArtifacts bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interpreter:   "python3",
		SourceSuffix:  ".py",
		MaxConcurrent: 12,
	}
}

// Stats tracks execution counts by outcome.
type Stats struct {
	Executions    int
	OK            int
	Timeouts      int
	NonZeroExits  int
	RuntimeErrors int
}

// Executor runs untrusted programs under a shared concurrency limit.
// One Executor is shared by every stage of a pipeline run so the limit
// is global, not per-stage.
type Executor struct {
	cfg Config
	sem *semaphore.Weighted

	mu    sync.Mutex
	stats Stats
}

// New creates an executor. MaxConcurrent below 1 is coerced to 1.
func New(cfg Config) *Executor {
	if cfg.Interpreter == "" {
		cfg.Interpreter = "python3"
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &Executor{
		cfg: cfg,
		sem: semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// Run executes source against input under the given deadline and returns
// a classified outcome. The source is written to a transient directory
// that is removed on every exit path. Run never returns a Go error for a
// misbehaving program; only the Outcome status reflects the failure.
func (e *Executor) Run(ctx context.Context, source, input string, timeout time.Duration) Outcome {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		// Cancelled while waiting for a slot.
		return e.record(Outcome{Status: StatusRuntimeError, Diagnostic: err.Error()})
	}
	defer e.sem.Release(1)

	dir, err := os.MkdirTemp(e.cfg.WorkDir, "arena_*")
	if err != nil {
		return e.record(Outcome{Status: StatusRuntimeError, Diagnostic: fmt.Sprintf("create execution dir: %v", err)})
	}
	if !e.cfg.KeepArtifacts {
		defer os.RemoveAll(dir)
	}

	sourcePath := filepath.Join(dir, "candidate"+e.cfg.SourceSuffix)
	if err := os.WriteFile(sourcePath, []byte(source), 0644); err != nil {
		return e.record(Outcome{Status: StatusRuntimeError, Diagnostic: fmt.Sprintf("write source: %v", err)})
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, e.cfg.Args...), sourcePath)
	cmd := exec.CommandContext(runCtx, e.cfg.Interpreter, args...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Reap a killed process even if it inherited our pipes to children.
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	out := Outcome{Duration: elapsed}
	switch {
	case runErr == nil:
		out.Status = StatusOK
		out.Output = strings.TrimSpace(stdout.String())

	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		// The deadline killed it; discard whatever it managed to print.
		out.Status = StatusTimeout

	case ctx.Err() != nil:
		out.Status = StatusRuntimeError
		out.Diagnostic = ctx.Err().Error()

	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			out.Status = StatusNonZeroExit
			out.Diagnostic = strings.TrimSpace(stderr.String())
			if out.Diagnostic == "" {
				out.Diagnostic = genericErrorMarker
			}
		} else {
			// Launch failure: missing interpreter, permissions, etc.
			out.Status = StatusRuntimeError
			out.Diagnostic = runErr.Error()
		}
	}

	logging.Get(logging.CategoryArena).Debugf("execution finished: status=%s duration=%s", out.Status, elapsed)
	return e.record(out)
}

// GetStats returns a copy of the execution counters.
func (e *Executor) GetStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Executor) record(out Outcome) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.Executions++
	switch out.Status {
	case StatusOK:
		e.stats.OK++
	case StatusTimeout:
		e.stats.Timeouts++
	case StatusNonZeroExit:
		e.stats.NonZeroExits++
	case StatusRuntimeError:
		e.stats.RuntimeErrors++
	}
	return out
}
