package pipeline

import (
	"context"
	"sync"
	"time"

	"gauntlet/internal/generate"
	"gauntlet/internal/logging"
)

// BuildOracle runs every brute-force candidate on every additional input
// and keeps, per input, the modal output when at least minAgree programs
// produced it. Failed executions contribute nothing. Ties between outputs
// with equal counts go to the output seen first in candidate order, so
// the result is deterministic for a fixed candidate order.
func BuildOracle(ctx context.Context, runner Runner, stress []generate.Candidate, inputs []string, timeout time.Duration, minAgree int) Oracle {
	if minAgree < 1 {
		minAgree = 1
	}

	// Pre-partitioned slots: cell (si, ii) is written by exactly one
	// goroutine, so aggregation needs no locking and sees a fixed order.
	slots := make([][]*string, len(stress))
	for si := range slots {
		slots[si] = make([]*string, len(inputs))
	}

	var wg sync.WaitGroup
	for si, cand := range stress {
		for ii, input := range inputs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res := runner.Run(ctx, cand.Code, input, timeout)
				if res.Ok() {
					out := res.Output
					slots[si][ii] = &out
				}
			}()
		}
	}
	wg.Wait()

	oracle := make(Oracle)
	for ii := range inputs {
		counts := make(map[string]int)
		var order []string
		for si := range stress {
			cell := slots[si][ii]
			if cell == nil {
				continue
			}
			if _, seen := counts[*cell]; !seen {
				order = append(order, *cell)
			}
			counts[*cell]++
		}

		best, bestCount := "", 0
		for _, out := range order {
			if counts[out] > bestCount {
				best, bestCount = out, counts[out]
			}
		}
		if bestCount >= minAgree {
			oracle[ii] = best
		}
	}

	logging.Get(logging.CategoryOracle).Infof("oracle covers %d/%d additional inputs (min_agree=%d)", len(oracle), len(inputs), minAgree)
	return oracle
}
