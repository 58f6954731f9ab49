package pipeline

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"gauntlet/internal/arena"
	"gauntlet/internal/generate"
	"gauntlet/internal/logging"
)

const signatureSep = "\x1f"

// signaturePart encodes one execution result unambiguously. Successful
// outputs are quoted, so separator or control bytes inside a program's
// output cannot forge a group boundary; failure markers never start
// with a quote, so a program printing "fail:timeout" still lands in a
// different group than a program that actually timed out.
func signaturePart(res arena.Outcome) string {
	if res.Ok() {
		return strconv.Quote(res.Output)
	}
	return "fail:" + res.Status.String()
}

// SelectByConsensus runs every candidate on every additional input
// concurrently, groups candidates by their full ordered output
// signature, and returns the first member of the largest group. Ties
// between equal-sized groups go to the group discovered first in
// candidate order. With no candidates it returns nil; with no inputs
// every candidate shares the empty signature and the first candidate
// wins.
func SelectByConsensus(ctx context.Context, runner Runner, candidates []generate.Candidate, inputs []string, timeout time.Duration) *generate.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	// Cell (ci, ii) is written by exactly one goroutine, same slots
	// layout as the oracle builder.
	parts := make([][]string, len(candidates))
	for ci := range parts {
		parts[ci] = make([]string, len(inputs))
	}

	var wg sync.WaitGroup
	for ci, cand := range candidates {
		for ii, input := range inputs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				parts[ci][ii] = signaturePart(runner.Run(ctx, cand.Code, input, timeout))
			}()
		}
	}
	wg.Wait()

	groups := make(map[string][]int)
	var order []string
	for ci := range candidates {
		sig := strings.Join(parts[ci], signatureSep)
		if _, seen := groups[sig]; !seen {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], ci)
	}

	var best []int
	for _, sig := range order {
		if len(groups[sig]) > len(best) {
			best = groups[sig]
		}
	}

	chosen := candidates[best[0]]
	logging.Get(logging.CategoryConsensus).Infof("consensus: %d groups, winning group size %d, selected %s", len(groups), len(best), chosen.ID)
	return &chosen
}
