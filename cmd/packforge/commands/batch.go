package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/packforge/packforge/internal/batch"
	"github.com/packforge/packforge/internal/printer"
	"github.com/packforge/packforge/internal/state"
)

var (
	batchInput           string
	batchMode            string
	batchSequential      bool
	batchContinueOnError bool
	batchConcurrency     int
	batchMinIntervalMs   int64
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate character packs for every seed in a file",
	Long: `Generate character packs for every seed in a file, one line per seed.

By default seeds run in parallel with a bounded worker pool and a shared
rate limiter. With --sequential, seeds run one at a time and the batch stops
at the first failure unless --continue-on-error is set.

Progress is persisted to Redis after every seed, so an interrupted batch can
be continued with 'packforge resume'.

Examples:
  # Parallel batch with defaults from packforge.yml
  packforge batch --input seeds.txt

  # Gentle on the provider: two workers, at most one dispatch per second
  packforge batch --input seeds.txt --concurrency 2 --min-interval 1000

  # Strict sequential run that stops on the first failure
  packforge batch --input seeds.txt --sequential`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "Seed file, one seed per line (required)")
	batchCmd.Flags().StringVarP(&batchMode, "mode", "m", "", "Generation mode hint passed to every request")
	batchCmd.Flags().BoolVar(&batchSequential, "sequential", false, "Run seeds one at a time, stopping on failure")
	batchCmd.Flags().BoolVar(&batchContinueOnError, "continue-on-error", false, "Sequential mode: keep going past failures")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Parallel workers (default from config)")
	batchCmd.Flags().Int64Var(&batchMinIntervalMs, "min-interval", -1, "Minimum milliseconds between dispatches (default from config)")
	batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags override config defaults.
	concurrency := cfg.Batch.Concurrency
	if batchConcurrency > 0 {
		concurrency = batchConcurrency
	}
	minIntervalMs := cfg.Batch.MinIntervalMs
	if batchMinIntervalMs >= 0 {
		minIntervalMs = batchMinIntervalMs
	}
	continueOnError := cfg.Batch.ContinueOnError || batchContinueOnError

	seeds, err := batch.LoadSeeds(batchInput)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return printer.Error(
			"generation engine unavailable",
			err.Error(),
			[]string{fmt.Sprintf("Export your key first:\n  export %s=...", cfg.APIKeyEnv)},
		)
	}

	p, err := newPipeline(engine, cfg.Template)
	if err != nil {
		return err
	}

	draftStore, err := newDrafts(cfg)
	if err != nil {
		return err
	}

	stateStore, err := newStateStore(cfg)
	if err != nil {
		return err
	}
	defer stateStore.Close()

	if err := stateStore.Ping(ctx); err != nil {
		return printer.Error(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s: %v", cfg.RedisURL, err),
			[]string{"Batch runs need Redis for crash recovery. Start one:\n  docker run -d -p 6379:6379 redis:7"},
		)
	}

	runner := &batch.DraftRunner{
		Pipeline:   p,
		Drafts:     draftStore,
		Mode:       batchMode,
		SingleShot: !batchSequential,
	}

	opts := batch.Options{
		InputSource: batchInput,
		Config: state.ConfigSnapshot{
			Provider:        cfg.Provider,
			Model:           cfg.Model,
			Template:        cfg.Template,
			Mode:            batchMode,
			Concurrency:     concurrency,
			MinIntervalMs:   minIntervalMs,
			Sequential:      batchSequential,
			ContinueOnError: continueOnError,
		},
		Concurrency:     concurrency,
		MinInterval:     time.Duration(minIntervalMs) * time.Millisecond,
		Sequential:      batchSequential,
		ContinueOnError: continueOnError,
	}

	printer.Info("Running batch of %d seeds from %s\n", len(seeds), batchInput)

	bs, err := batch.New(stateStore, runner).Run(ctx, seeds, opts)
	if err != nil {
		return err
	}

	return reportBatch(bs)
}

// reportBatch summarizes a finished batch and points at the follow-up
// command when work is left.
func reportBatch(bs *state.BatchState) error {
	printer.Success("%d of %d seeds completed\n", len(bs.Completed), bs.TotalSeeds)

	if len(bs.Failed) > 0 {
		printer.Warning("%d seeds failed:\n", len(bs.Failed))
		for _, f := range bs.Failed {
			printer.Printf("  %s: %s\n", f.Seed, f.Error)
		}
	}

	if bs.Status == state.StatusCancelled {
		pending := bs.TotalSeeds - len(bs.Completed) - len(bs.Failed)
		printer.Warning("batch stopped early; %d seeds not attempted\n", pending)
		printer.Info("Continue with:\n  packforge resume\n")
	}

	return nil
}
