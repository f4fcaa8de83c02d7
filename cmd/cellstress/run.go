// Run command for the cellstress CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolkov/sharecell/internal/stress"
)

var (
	flagWorkers    int
	flagIterations int
	flagNoSave     bool
)

var runCmd = &cobra.Command{
	Use:   "run [scenario ...]",
	Short: "Run contention scenarios and record their results",
	Long: `Run executes the named scenarios (default: all) with the configured
worker and iteration counts, verifies the toolkit's invariants under load,
and records each result in the results database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgRun := stress.Config{
			Workers:    flagWorkers,
			Iterations: flagIterations,
		}
		if cfgRun.Workers == 0 {
			cfgRun.Workers = cfg.GetInt(cfgKeyWorkers)
		}
		if cfgRun.Iterations == 0 {
			cfgRun.Iterations = cfg.GetInt(cfgKeyIterations)
		}

		names := args
		if len(names) == 0 {
			names = stress.Names()
		}

		var store *stress.Store
		if !flagNoSave {
			var err error
			store, err = stress.OpenStore(resolveDBPath())
			if err != nil {
				return err
			}
			defer store.Close()
		}

		var results []stress.Result
		violations := int64(0)
		for _, name := range names {
			logger.Info().
				Str("scenario", name).
				Int("workers", cfgRun.Workers).
				Int("iterations", cfgRun.Iterations).
				Msg("running")

			r, err := stress.Run(name, cfgRun)
			if err != nil {
				return err
			}

			event := logger.Info()
			if r.Errors > 0 {
				event = logger.Error()
			}
			event.
				Str("scenario", r.Scenario).
				Str("run_id", r.RunID).
				Int64("ops", r.Ops).
				Int64("errors", r.Errors).
				Dur("duration", r.Duration).
				Msg("done")

			if store != nil {
				if err := store.Save(r); err != nil {
					return err
				}
			}
			violations += r.Errors
			results = append(results, r)
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
		}
		if violations > 0 {
			return fmt.Errorf("%d invariant violations across %d scenarios", violations, len(names))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&flagWorkers, "workers", 0, "concurrent workers (default: config, then CPU count)")
	runCmd.Flags().IntVar(&flagIterations, "iterations", 0, "iterations per worker (default: config, then 1000)")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "skip recording results")
}
