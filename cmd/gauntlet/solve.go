package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gauntlet/internal/arena"
	"gauntlet/internal/config"
	"gauntlet/internal/generate"
	"gauntlet/internal/pipeline"
	"gauntlet/internal/problem"
	"gauntlet/internal/store"
)

var (
	problemPath string
	outputPath  string
	candidates  int
	stressCount int
	minAgree    int
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run the selection pipeline for one problem",
	Long: `Loads a problem JSON file, generates candidate and stress pools,
and writes the selected program to the output path.

The problem file format:

  {
    "title": "...",
    "description": "...",
    "sample_tests": [{"input": "...", "output": "..."}],
    "additional_tests": [{"input": "..."}]
  }`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&problemPath, "problem", "", "path to the problem JSON file (required)")
	solveCmd.Flags().StringVar(&outputPath, "output", "solution.py", "path for the selected program")
	solveCmd.Flags().IntVar(&candidates, "candidates", 0, "override the number of solution candidates")
	solveCmd.Flags().IntVar(&stressCount, "stress", 0, "override the number of stress candidates")
	solveCmd.Flags().IntVar(&minAgree, "min-agree", 0, "override the oracle agreement floor")
	_ = solveCmd.MarkFlagRequired("problem")
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if candidates > 0 {
		cfg.Pipeline.Candidates = candidates
	}
	if stressCount > 0 {
		cfg.Pipeline.Stress = stressCount
	}
	if minAgree > 0 {
		cfg.Pipeline.MinAgree = minAgree
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	prob, err := problem.Load(problemPath)
	if err != nil {
		return err
	}

	result, err := solveProblem(ctx, cfg, prob)
	if err != nil {
		return err
	}

	printSummary(prob, result)

	if result.Selected == nil {
		return fmt.Errorf("no candidate survived the pipeline")
	}
	if err := os.WriteFile(outputPath, []byte(result.Selected.Code+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write solution: %w", err)
	}
	fmt.Printf("\nSolution written to %s\n", outputPath)
	return nil
}

// solveProblem wires the collaborators from config and runs the pipeline,
// recording the run when a store is configured.
func solveProblem(ctx context.Context, cfg *config.Config, prob *problem.Problem) (*pipeline.Result, error) {
	client, err := generate.NewClient(ctx, cfg.Generation)
	if err != nil {
		return nil, err
	}
	gen := generate.New(client, generate.Config{
		MaxConcurrent: cfg.Generation.MaxConcurrent,
		Timeout:       cfg.Generation.TimeoutDuration(),
	})
	runner := arena.New(arena.Config{
		Interpreter:   cfg.Execution.Interpreter,
		Args:          cfg.Execution.Args,
		SourceSuffix:  cfg.Execution.SourceSuffix,
		MaxConcurrent: cfg.Execution.MaxConcurrent,
		WorkDir:       cfg.Execution.WorkDir,
		KeepArtifacts: cfg.Execution.KeepArtifacts,
	})

	p := pipeline.New(gen, runner, pipeline.Config{
		Candidates:       cfg.Pipeline.Candidates,
		Stress:           cfg.Pipeline.Stress,
		MinAgree:         cfg.Pipeline.MinAgree,
		MaxDebugAttempts: cfg.Pipeline.MaxDebugAttempts,
		SampleTimeout:    cfg.Execution.SampleTimeoutDuration(),
		StressTimeout:    cfg.Execution.StressTimeoutDuration(),
		JudgeTimeout:     cfg.Execution.JudgeTimeoutDuration(),
	})

	result, err := p.Run(ctx, prob)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Path != "" {
		if err := recordRun(cfg.Store.Path, prob, result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record run: %v\n", err)
		}
	}
	return result, nil
}

func recordRun(dbPath string, prob *problem.Problem, result *pipeline.Result) error {
	s, err := store.NewRunStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	rec := store.RunRecord{
		RunID:               uuid.NewString(),
		ProblemTitle:        prob.Title,
		CandidatesGenerated: result.Stats.CandidatesGenerated,
		StressGenerated:     result.Stats.StressGenerated,
		PassedSamples:       result.Stats.PassedSamples,
		OracleSize:          result.Stats.OracleSize,
		AdditionalInputs:    result.Stats.AdditionalInputs,
		PassedFilter:        result.Stats.PassedFilter,
		FallbackUsed:        result.Stats.FallbackUsed,
		DurationMs:          result.Duration.Milliseconds(),
	}
	if result.Selected != nil {
		rec.SelectedID = result.Selected.ID
		rec.SelectedCode = result.Selected.Code
	}
	return s.Record(rec)
}

func printSummary(prob *problem.Problem, result *pipeline.Result) {
	selected := "none"
	if result.Selected != nil {
		selected = result.Selected.ID
	}

	line := strings.Repeat("=", 60)
	fmt.Println(line)
	fmt.Println("PIPELINE SUMMARY")
	fmt.Println(line)
	fmt.Printf("Problem:                     %s\n", prob.Title)
	fmt.Printf("Candidates generated:        %d\n", result.Stats.CandidatesGenerated)
	fmt.Printf("Stress candidates generated: %d\n", result.Stats.StressGenerated)
	fmt.Printf("Passed sample tests:         %d\n", result.Stats.PassedSamples)
	fmt.Printf("Oracle coverage:             %d/%d\n", result.Stats.OracleSize, result.Stats.AdditionalInputs)
	fmt.Printf("Passed oracle filter:        %d\n", result.Stats.PassedFilter)
	if result.Stats.FallbackUsed {
		fmt.Println("Fallback:                    consensus ran on the debugged pool")
	}
	fmt.Printf("Selected:                    %s\n", selected)
	fmt.Printf("Duration:                    %s\n", result.Duration.Round(10*time.Millisecond))
	fmt.Println(line)
}
