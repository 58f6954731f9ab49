package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"gauntlet/internal/generate"
	"gauntlet/internal/logging"
)

// FilterByOracle keeps the candidates whose output matches the oracle on
// every input the oracle covers. An empty oracle filters nothing: with no
// evidence the whole pool survives. Candidate order is preserved.
func FilterByOracle(ctx context.Context, runner Runner, candidates []generate.Candidate, oracle Oracle, inputs []string, timeout time.Duration) []generate.Candidate {
	if len(oracle) == 0 {
		return candidates
	}

	covered := make([]int, 0, len(oracle))
	for idx := range oracle {
		covered = append(covered, idx)
	}
	sort.Ints(covered)

	// Cell (ci, k) is written by exactly one goroutine; the whole
	// candidate-by-input cross product runs concurrently.
	matches := make([][]bool, len(candidates))
	for ci := range matches {
		matches[ci] = make([]bool, len(covered))
	}

	var wg sync.WaitGroup
	for ci, cand := range candidates {
		for k, idx := range covered {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res := runner.Run(ctx, cand.Code, inputs[idx], timeout)
				matches[ci][k] = res.Ok() && res.Output == oracle[idx]
			}()
		}
	}
	wg.Wait()

	out := make([]generate.Candidate, 0, len(candidates))
	for ci, cand := range candidates {
		keep := true
		for k := range covered {
			if !matches[ci][k] {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, cand)
		}
	}
	logging.Get(logging.CategoryOracle).Infof("oracle filter kept %d/%d candidates", len(out), len(candidates))
	return out
}
