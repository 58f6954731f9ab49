package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gauntlet/internal/generate"
	"gauntlet/internal/logging"
	"gauntlet/internal/problem"
)

// Config holds pipeline settings.
type Config struct {
	// Candidates is the size of the solution pool to generate.
	Candidates int
	// Stress is the size of the brute-force pool to generate.
	Stress int
	// MinAgree is the agreement floor for an oracle entry.
	MinAgree int
	// MaxDebugAttempts is the revision budget per candidate.
	MaxDebugAttempts int
	// SampleTimeout bounds sample-test executions.
	SampleTimeout time.Duration
	// StressTimeout bounds brute-force executions, which are expected
	// to be slow.
	StressTimeout time.Duration
	// JudgeTimeout bounds filter and consensus executions.
	JudgeTimeout time.Duration
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		Candidates:       9,
		Stress:           5,
		MinAgree:         2,
		MaxDebugAttempts: 3,
		SampleTimeout:    2 * time.Second,
		StressTimeout:    5 * time.Second,
		JudgeTimeout:     2 * time.Second,
	}
}

// Stats counts what survived each stage of a run.
type Stats struct {
	CandidatesGenerated int
	StressGenerated     int
	PassedSamples       int
	OracleSize          int
	AdditionalInputs    int
	PassedFilter        int
	FallbackUsed        bool
}

// Result is the outcome of one pipeline run. Selected is nil when no
// candidate survived; that is a negative result, not an error.
type Result struct {
	Selected *generate.Candidate
	Stats    Stats
	Duration time.Duration
}

// Pipeline wires a candidate source and a runner through the five
// stages. Stages are barrier-synced: a stage starts only after the
// previous one fully finished.
type Pipeline struct {
	source CandidateSource
	runner Runner
	cfg    Config
}

// New creates a pipeline.
func New(source CandidateSource, runner Runner, cfg Config) *Pipeline {
	return &Pipeline{source: source, runner: runner, cfg: cfg}
}

// Run executes the full pipeline for one problem.
func (p *Pipeline) Run(ctx context.Context, prob *problem.Problem) (*Result, error) {
	log := logging.Get(logging.CategoryPipeline)
	start := time.Now()
	res := &Result{}
	res.Stats.AdditionalInputs = len(prob.AdditionalInputs)

	finish := func() *Result {
		res.Duration = time.Since(start)
		return res
	}

	// Stage 1: generate both pools concurrently.
	var candidates, stress []generate.Candidate
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		candidates, err = p.source.GenerateBatch(egCtx, prob, generate.RoleSolution, p.cfg.Candidates)
		return err
	})
	eg.Go(func() error {
		var err error
		stress, err = p.source.GenerateBatch(egCtx, prob, generate.RoleStress, p.cfg.Stress)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	res.Stats.CandidatesGenerated = len(candidates)
	res.Stats.StressGenerated = len(stress)
	log.Infof("generated %d candidates, %d stress candidates", len(candidates), len(stress))
	// A pool emptied by cancellation is a partial result, never a
	// final one, so the context check comes first at every stage.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		log.Warn("no candidates generated")
		return finish(), nil
	}

	// Stage 2: self-debug every candidate concurrently.
	debugged := p.debugAll(ctx, prob, candidates)
	res.Stats.PassedSamples = len(debugged)
	log.Infof("%d/%d candidates passed sample tests", len(debugged), len(candidates))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(debugged) == 0 {
		log.Warn("no candidates passed sample tests")
		return finish(), nil
	}

	// Stage 3: build the oracle from the brute-force pool.
	oracle := BuildOracle(ctx, p.runner, stress, prob.AdditionalInputs, p.cfg.StressTimeout, p.cfg.MinAgree)
	res.Stats.OracleSize = len(oracle)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: filter through the oracle. An empty filter result falls
	// back to the debugged pool so a bad oracle cannot zero out the run.
	filtered := FilterByOracle(ctx, p.runner, debugged, oracle, prob.AdditionalInputs, p.cfg.JudgeTimeout)
	res.Stats.PassedFilter = len(filtered)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pool := filtered
	if len(pool) == 0 {
		pool = debugged
		res.Stats.FallbackUsed = true
		log.Warn("oracle filter removed every candidate, falling back to the debugged pool")
	}

	// Stage 5: consensus over the surviving pool.
	res.Selected = SelectByConsensus(ctx, p.runner, pool, prob.AdditionalInputs, p.cfg.JudgeTimeout)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return finish(), nil
}

// debugAll runs the self-debug loop over the pool concurrently,
// preserving candidate order among the survivors.
func (p *Pipeline) debugAll(ctx context.Context, prob *problem.Problem, candidates []generate.Candidate) []generate.Candidate {
	debugger := NewDebugger(p.runner, p.source, DebugConfig{
		MaxAttempts:   p.cfg.MaxDebugAttempts,
		SampleTimeout: p.cfg.SampleTimeout,
	})

	slots := make([]*generate.Candidate, len(candidates))
	var wg sync.WaitGroup
	for i, cand := range candidates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots[i] = debugger.Debug(ctx, prob, cand)
		}()
	}
	wg.Wait()

	out := make([]generate.Candidate, 0, len(candidates))
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}
