package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"gauntlet/internal/logging"
	"gauntlet/internal/problem"
)

// Role distinguishes what a candidate is for.
type Role string

const (
	// RoleSolution asks for an efficient solution attempt.
	RoleSolution Role = "solution"
	// RoleStress asks for a slow but obviously correct brute force.
	RoleStress Role = "stress"
)

// Candidate is one generated program.
type Candidate struct {
	ID   string
	Role Role
	Code string
}

// ErrEmptyGeneration reports that the model produced no usable code.
// Batch generation treats it as a soft failure and keeps going.
var ErrEmptyGeneration = errors.New("model produced no usable code")

// Config holds generator settings.
type Config struct {
	// MaxConcurrent bounds in-flight provider requests. This limiter is
	// independent of the execution limiter in the arena.
	MaxConcurrent int64
	// Timeout bounds each provider request.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 6,
		Timeout:       2 * time.Minute,
	}
}

// Generator turns problems into candidate programs via an LLMClient.
type Generator struct {
	client LLMClient
	cfg    Config
	sem    *semaphore.Weighted
}

// New creates a generator. MaxConcurrent below 1 is coerced to 1.
func New(client LLMClient, cfg Config) *Generator {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Generator{
		client: client,
		cfg:    cfg,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// Generate produces one candidate for the given role.
func (g *Generator) Generate(ctx context.Context, prob *problem.Problem, role Role) (Candidate, error) {
	var prompt string
	switch role {
	case RoleStress:
		prompt = stressPrompt(prob.Statement())
	default:
		prompt = solutionPrompt(prob.Statement())
	}
	return g.complete(ctx, role, prompt)
}

// Revise produces a corrected candidate from a failing one. The failure
// text carries which sample test failed and how.
func (g *Generator) Revise(ctx context.Context, prob *problem.Problem, prev Candidate, failure string) (Candidate, error) {
	prompt := revisePrompt(prob.Statement(), prev.Code, failure)
	return g.complete(ctx, prev.Role, prompt)
}

// GenerateBatch produces up to n candidates concurrently. Individual
// generation failures are logged and skipped, so the result may hold
// fewer than n candidates; slot order is preserved for the survivors.
func (g *Generator) GenerateBatch(ctx context.Context, prob *problem.Problem, role Role, n int) ([]Candidate, error) {
	slots := make([]*Candidate, n)

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			c, err := g.Generate(egCtx, prob, role)
			if err != nil {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				logging.Get(logging.CategoryGenerate).Warnf("candidate generation failed: role=%s err=%v", role, err)
				return nil
			}
			slots[i] = &c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, n)
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	logging.Get(logging.CategoryGenerate).Infof("generated %d/%d %s candidates", len(out), n, role)
	return out, nil
}

func (g *Generator) complete(ctx context.Context, role Role, prompt string) (Candidate, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return Candidate{}, err
	}
	defer g.sem.Release(1)

	reqCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.client.CompleteWithSystem(reqCtx, systemPrompt, prompt)
	if err != nil {
		return Candidate{}, fmt.Errorf("completion failed: %w", err)
	}

	code := extractCode(text)
	if code == "" {
		return Candidate{}, ErrEmptyGeneration
	}

	return Candidate{
		ID:   uuid.NewString(),
		Role: role,
		Code: code,
	}, nil
}
