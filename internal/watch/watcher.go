// Package watch monitors a directory for new problem files and hands
// them to a solve callback, so a drop directory can drive the pipeline.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gauntlet/internal/logging"
)

// Handler is invoked for each settled problem file.
type Handler func(ctx context.Context, path string)

// Stats tracks watcher activity.
type Stats struct {
	FilesSeen     int
	SolvesStarted int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// ProblemWatcher watches a directory for *.json problem files. Events
// are debounced because editors and copies emit several writes per file.
type ProblemWatcher struct {
	watcher     *fsnotify.Watcher
	dir         string
	handler     Handler
	settleDelay time.Duration
	debounceDur time.Duration

	mu          sync.Mutex
	debounceMap map[string]time.Time
	stats       Stats
}

// New creates a watcher over dir. The handler runs inline in the event
// loop so solves for dropped files are serialized.
func New(dir string, handler Handler) (*ProblemWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &ProblemWatcher{
		watcher:     w,
		dir:         dir,
		handler:     handler,
		settleDelay: 200 * time.Millisecond,
		debounceDur: 2 * time.Second,
		debounceMap: make(map[string]time.Time),
	}, nil
}

// Run processes events until the context is cancelled.
func (pw *ProblemWatcher) Run(ctx context.Context) error {
	log := logging.Get(logging.CategoryWatch)
	log.Infof("watching %s for problem files", pw.dir)
	defer pw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return nil
			}
			if !pw.relevant(event) {
				continue
			}
			// Let the writer finish before parsing the file.
			time.Sleep(pw.settleDelay)
			log.Infof("new problem file: %s", event.Name)
			pw.mu.Lock()
			pw.stats.SolvesStarted++
			pw.mu.Unlock()
			pw.handler(ctx, event.Name)

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return nil
			}
			pw.mu.Lock()
			pw.stats.Errors++
			pw.mu.Unlock()
			log.Warnf("watch error: %v", err)
		}
	}
}

// relevant reports whether the event should trigger a solve, applying
// the suffix check and the per-path debounce window.
func (pw *ProblemWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return false
	}

	pw.mu.Lock()
	defer pw.mu.Unlock()

	now := time.Now()
	pw.stats.FilesSeen++
	pw.stats.LastEventPath = event.Name
	pw.stats.LastEventTime = now

	if last, seen := pw.debounceMap[event.Name]; seen && now.Sub(last) < pw.debounceDur {
		return false
	}
	pw.debounceMap[event.Name] = now
	return true
}

// GetStats returns a copy of the activity counters.
func (pw *ProblemWatcher) GetStats() Stats {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.stats
}
