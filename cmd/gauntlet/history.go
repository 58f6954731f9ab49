package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gauntlet/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Path == "" {
			return fmt.Errorf("run history is disabled (store.path is empty)")
		}
		s, err := store.NewRunStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.GetRecent(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			selected := r.SelectedID
			if selected == "" {
				selected = "none"
			}
			fmt.Printf("%s  %-30s  cand=%d/%d  oracle=%d/%d  filter=%d  selected=%s  (%s)\n",
				r.CreatedAt.Format(time.DateTime), truncate(r.ProblemTitle, 30),
				r.PassedSamples, r.CandidatesGenerated,
				r.OracleSize, r.AdditionalInputs,
				r.PassedFilter, selected,
				time.Duration(r.DurationMs)*time.Millisecond)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of runs to show")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
