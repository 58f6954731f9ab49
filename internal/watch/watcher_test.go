package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherHandlesNewProblemFile(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()

	var mu sync.Mutex
	var handled []string
	pw, err := New(dir, func(ctx context.Context, path string) {
		mu.Lock()
		handled = append(handled, path)
		mu.Unlock()
	})
	require.NoError(t, err)
	pw.settleDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pw.Run(ctx) }()

	path := filepath.Join(dir, "problem.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"T"}`), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) >= 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, path, handled[0])
}

func TestWatcherIgnoresOtherSuffixes(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	count := 0
	pw, err := New(dir, func(ctx context.Context, path string) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)
	pw.settleDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pw.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, count)
}

func TestWatcherDebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	count := 0
	pw, err := New(dir, func(ctx context.Context, path string) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)
	pw.settleDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pw.Run(ctx) }()

	path := filepath.Join(dir, "problem.json")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"title":"T"}`), 0644))
		time.Sleep(30 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 1
	}, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count, "writes inside the debounce window collapse into one solve")
	assert.GreaterOrEqual(t, pw.GetStats().FilesSeen, 2)
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), func(ctx context.Context, path string) {})
	assert.Error(t, err)
}
