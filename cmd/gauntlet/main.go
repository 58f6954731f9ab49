// gauntlet selects the most likely correct program among LLM-generated
// candidates by self-debugging them against sample tests, filtering them
// through a brute-force oracle, and taking an output consensus.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gauntlet/internal/config"
	"gauntlet/internal/logging"
)

var (
	cfgPath string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gauntlet",
	Short: "Stress-testing based self-consistency for generated programs",
	Long: `gauntlet runs a candidate-selection pipeline for a programming problem:

  1. Generate solution candidates and brute-force stress programs in parallel
  2. Self-debug each candidate against the labeled sample tests
  3. Build a probabilistic oracle from stress-program agreement
  4. Filter candidates through the oracle
  5. Select the final program by output-signature consensus`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Verbose = true
		}
		if err := logging.Initialize(cfg.Logging.Verbose, cfg.Logging.Categories); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "gauntlet.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
