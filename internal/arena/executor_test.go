package arena

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// shExecutor builds an executor that runs candidates as shell scripts,
// so tests do not depend on a Python installation.
func shExecutor(t *testing.T, maxConcurrent int64) *Executor {
	t.Helper()
	return New(Config{
		Interpreter:   "sh",
		SourceSuffix:  ".sh",
		MaxConcurrent: maxConcurrent,
		WorkDir:       t.TempDir(),
	})
}

func TestRunOK(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := shExecutor(t, 4)

	out := e.Run(context.Background(), "cat\n", "hello world\n", 2*time.Second)

	assert.Equal(t, StatusOK, out.Status)
	assert.Equal(t, "hello world", out.Output, "stdout must be trimmed")
	assert.True(t, out.Ok())
}

func TestRunNonZeroExit(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := shExecutor(t, 4)

	out := e.Run(context.Background(), "echo boom >&2\nexit 3\n", "", 2*time.Second)

	assert.Equal(t, StatusNonZeroExit, out.Status)
	assert.Equal(t, "boom", out.Diagnostic)
	assert.False(t, out.Ok())
}

func TestRunNonZeroExitSilent(t *testing.T) {
	e := shExecutor(t, 4)

	out := e.Run(context.Background(), "exit 1\n", "", 2*time.Second)

	assert.Equal(t, StatusNonZeroExit, out.Status)
	assert.Equal(t, genericErrorMarker, out.Diagnostic)
}

func TestRunTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := shExecutor(t, 4)

	start := time.Now()
	out := e.Run(context.Background(), "echo partial\nsleep 30\n", "", 200*time.Millisecond)
	elapsed := time.Since(start)

	assert.Equal(t, StatusTimeout, out.Status)
	assert.Empty(t, out.Output, "output of a timed-out run is discarded")
	// Deadline plus kill/reap overhead, nowhere near the sleep duration.
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRunMissingInterpreter(t *testing.T) {
	e := New(Config{
		Interpreter:   "definitely-not-an-interpreter-7c2f",
		SourceSuffix:  ".x",
		MaxConcurrent: 1,
		WorkDir:       t.TempDir(),
	})

	out := e.Run(context.Background(), "anything", "", time.Second)

	assert.Equal(t, StatusRuntimeError, out.Status)
	assert.NotEmpty(t, out.Diagnostic)
}

func TestRunCleansUpArtifacts(t *testing.T) {
	work := t.TempDir()
	e := New(Config{
		Interpreter:   "sh",
		SourceSuffix:  ".sh",
		MaxConcurrent: 2,
		WorkDir:       work,
	})

	_ = e.Run(context.Background(), "cat\n", "x\n", 2*time.Second)
	_ = e.Run(context.Background(), "sleep 30\n", "", 100*time.Millisecond)

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries, "execution dirs must be removed on success and on timeout")
}

func TestRunCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := shExecutor(t, 4)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	out := e.Run(ctx, "sleep 30\n", "", 10*time.Second)

	assert.Equal(t, StatusRuntimeError, out.Status, "external cancellation is not a timeout")
}

func TestConcurrencyLimit(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := shExecutor(t, 2)

	start := time.Now()
	done := make(chan Outcome, 4)
	for i := 0; i < 4; i++ {
		go func() {
			done <- e.Run(context.Background(), "sleep 0.3\n", "", 5*time.Second)
		}()
	}
	for i := 0; i < 4; i++ {
		out := <-done
		assert.Equal(t, StatusOK, out.Status)
	}
	elapsed := time.Since(start)

	// Four 300ms runs through two slots need at least two waves.
	assert.GreaterOrEqual(t, elapsed, 500*time.Millisecond,
		"limiter must serialize runs beyond the slot count")
}

func TestStats(t *testing.T) {
	e := shExecutor(t, 4)

	_ = e.Run(context.Background(), "cat\n", "a\n", 2*time.Second)
	_ = e.Run(context.Background(), "exit 1\n", "", 2*time.Second)
	_ = e.Run(context.Background(), "sleep 30\n", "", 100*time.Millisecond)

	stats := e.GetStats()
	assert.Equal(t, 3, stats.Executions)
	assert.Equal(t, 1, stats.OK)
	assert.Equal(t, 1, stats.NonZeroExits)
	assert.Equal(t, 1, stats.Timeouts)
}
