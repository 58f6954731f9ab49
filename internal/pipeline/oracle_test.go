package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"gauntlet/internal/arena"
)

func TestBuildOracleMinAgree(t *testing.T) {
	// Three brute-force programs answering one input: 4, 4, 5.
	runner := &scriptRunner{fn: func(source, input string) arena.Outcome {
		if source == "bf3" {
			return okOut("5")
		}
		return okOut("4")
	}}
	stress := cands("bf1", "bf2", "bf3")
	inputs := []string{"x\n"}

	oracle := BuildOracle(context.Background(), runner, stress, inputs, time.Second, 2)
	if diff := cmp.Diff(Oracle{0: "4"}, oracle); diff != "" {
		t.Errorf("oracle mismatch (-want +got):\n%s", diff)
	}

	oracle = BuildOracle(context.Background(), runner, stress, inputs, time.Second, 3)
	assert.Empty(t, oracle, "a 2-of-3 mode does not meet min_agree=3")
}

func TestBuildOracleTieBreak(t *testing.T) {
	// A 1-1 tie resolves to the output of the earlier program in the
	// pool, so repeated runs give the same oracle.
	runner := &scriptRunner{fn: func(source, input string) arena.Outcome {
		if source == "bf1" {
			return okOut("left")
		}
		return okOut("right")
	}}
	stress := cands("bf1", "bf2")

	oracle := BuildOracle(context.Background(), runner, stress, []string{"x\n"}, time.Second, 1)
	assert.Equal(t, Oracle{0: "left"}, oracle)
}

func TestBuildOracleIgnoresFailures(t *testing.T) {
	// Failures contribute nothing. bf1 crashes, the other two agree.
	runner := &scriptRunner{fn: func(source, input string) arena.Outcome {
		if source == "bf1" {
			return failOut()
		}
		return okOut("7")
	}}
	stress := cands("bf1", "bf2", "bf3")

	oracle := BuildOracle(context.Background(), runner, stress, []string{"x\n"}, time.Second, 2)
	assert.Equal(t, Oracle{0: "7"}, oracle)
}

func TestBuildOraclePerInputCoverage(t *testing.T) {
	// Agreement is judged per input: the pool agrees on the first input
	// and splits on the second.
	runner := &scriptRunner{fn: func(source, input string) arena.Outcome {
		if input == "a\n" {
			return okOut("same")
		}
		return okOut(source)
	}}
	stress := cands("bf1", "bf2")

	oracle := BuildOracle(context.Background(), runner, stress, []string{"a\n", "b\n"}, time.Second, 2)
	if diff := cmp.Diff(Oracle{0: "same"}, oracle); diff != "" {
		t.Errorf("oracle mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildOracleEmptyPool(t *testing.T) {
	runner := &scriptRunner{fn: func(source, input string) arena.Outcome { return okOut("x") }}

	oracle := BuildOracle(context.Background(), runner, nil, []string{"a\n"}, time.Second, 2)
	assert.Empty(t, oracle)
	assert.Equal(t, 0, runner.callCount())
}
