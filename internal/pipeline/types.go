// Package pipeline coordinates the stress-testing self-consistency run:
// generate candidate and brute-force pools, self-debug candidates against
// the sample tests, build a probabilistic oracle from the brute-force
// pool, filter candidates through the oracle, and pick the final program
// by output-signature consensus.
package pipeline

import (
	"context"
	"time"

	"gauntlet/internal/arena"
	"gauntlet/internal/generate"
	"gauntlet/internal/problem"
)

// Runner executes one program on one input under a deadline. The arena
// executor satisfies this; tests substitute a scripted fake.
type Runner interface {
	Run(ctx context.Context, source, input string, timeout time.Duration) arena.Outcome
}

// CandidateSource produces and revises candidate programs. The generate
// package's Generator satisfies this.
type CandidateSource interface {
	GenerateBatch(ctx context.Context, prob *problem.Problem, role generate.Role, n int) ([]generate.Candidate, error)
	Revise(ctx context.Context, prob *problem.Problem, prev generate.Candidate, failure string) (generate.Candidate, error)
}

// Oracle maps an additional-input index to the output the brute-force
// pool agreed on. Inputs without sufficient agreement are absent.
type Oracle map[int]string
