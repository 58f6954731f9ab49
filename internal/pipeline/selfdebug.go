package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gauntlet/internal/generate"
	"gauntlet/internal/logging"
	"gauntlet/internal/problem"
)

// debugState tracks where a candidate is in the test-revise loop.
type debugState int

const (
	stateTesting debugState = iota
	stateRevising
	statePassed
	stateExhausted
)

func (s debugState) String() string {
	switch s {
	case stateTesting:
		return "testing"
	case stateRevising:
		return "revising"
	case statePassed:
		return "passed"
	case stateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// DebugConfig holds self-debug loop settings.
type DebugConfig struct {
	// MaxAttempts is the number of revisions allowed per candidate, so a
	// candidate is tested at most MaxAttempts+1 times.
	MaxAttempts int
	// SampleTimeout bounds each sample-test execution.
	SampleTimeout time.Duration
}

// Debugger drives candidates through the sample tests, asking the
// candidate source for a revision after each failing round.
type Debugger struct {
	runner Runner
	source CandidateSource
	cfg    DebugConfig
}

// NewDebugger creates a self-debug loop driver.
func NewDebugger(runner Runner, source CandidateSource, cfg DebugConfig) *Debugger {
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}
	if cfg.SampleTimeout <= 0 {
		cfg.SampleTimeout = 2 * time.Second
	}
	return &Debugger{runner: runner, source: source, cfg: cfg}
}

// Debug runs the candidate against every sample test, revising it on
// failure until it passes or the revision budget is spent. It returns
// the surviving candidate, which may be a revision of the one passed
// in, or nil when the candidate is exhausted.
func (d *Debugger) Debug(ctx context.Context, prob *problem.Problem, cand generate.Candidate) *generate.Candidate {
	log := logging.Get(logging.CategoryDebug)
	current := cand

	for attempt := 0; ; attempt++ {
		failure := d.runSamples(ctx, prob, current)
		if failure == "" {
			log.Debugf("candidate %s: %s after %d revisions", cand.ID, statePassed, attempt)
			return &current
		}
		if attempt >= d.cfg.MaxAttempts {
			log.Debugf("candidate %s: %s (%s)", cand.ID, stateExhausted, failure)
			return nil
		}

		log.Debugf("candidate %s: %s (%s)", cand.ID, stateRevising, failure)
		revised, err := d.source.Revise(ctx, prob, current, failure)
		if err != nil {
			log.Warnf("candidate %s: revision failed: %v", cand.ID, err)
			return nil
		}
		current = revised
	}
}

// runSamples executes every sample test concurrently and returns a
// description of the first failure in test order, or "" when all pass.
func (d *Debugger) runSamples(ctx context.Context, prob *problem.Problem, cand generate.Candidate) string {
	outcomes := make([]struct {
		ok  bool
		out string
	}, len(prob.SampleTests))

	var wg sync.WaitGroup
	for i, st := range prob.SampleTests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := d.runner.Run(ctx, cand.Code, st.Input, d.cfg.SampleTimeout)
			if res.Ok() {
				outcomes[i].ok = true
				outcomes[i].out = res.Output
			} else {
				outcomes[i].out = fmt.Sprintf("%s: %s", res.Status, res.Diagnostic)
			}
		}()
	}
	wg.Wait()

	for i, res := range outcomes {
		expected := strings.TrimSpace(prob.SampleTests[i].Output)
		switch {
		case !res.ok:
			return fmt.Sprintf("sample test %d failed (%s)", i+1, res.out)
		case res.out != expected:
			return fmt.Sprintf("sample test %d: expected %q, got %q", i+1, expected, res.out)
		}
	}
	return ""
}
