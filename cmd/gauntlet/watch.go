package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"gauntlet/internal/problem"
	"gauntlet/internal/watch"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and solve problem files as they appear",
	Long: `Watches a directory for new *.json problem files and runs the
pipeline for each one. The selected program is written next to the
problem file with a .py suffix.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "problems", "directory to watch for problem files")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	pw, err := watch.New(watchDir, func(ctx context.Context, path string) {
		if err := solveFile(ctx, path); err != nil {
			fmt.Fprintf(os.Stderr, "solve %s: %v\n", path, err)
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", watchDir)
	err = pw.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func solveFile(ctx context.Context, path string) error {
	prob, err := problem.Load(path)
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

	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".py"
	if err := os.WriteFile(out, []byte(result.Selected.Code+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write solution: %w", err)
	}
	fmt.Printf("Solution written to %s\n", out)
	return nil
}
