package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packforge/packforge/internal/batch"
	"github.com/packforge/packforge/internal/printer"
	"github.com/packforge/packforge/internal/state"
)

var resumeBatchID string

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continue an interrupted or cancelled batch",
	Long: `Continue a batch that was interrupted or stopped on a failure.

The original seed file is reloaded and every seed already completed or
failed is skipped by exact match. Generation parameters come from the
batch's persisted config snapshot, not from current flags, so a resumed
batch can never silently change provider, model, or template mid-run.

Without --batch-id the most recent non-completed batch is resumed.

Examples:
  # Resume the most recent unfinished batch
  packforge resume

  # Resume a specific batch from 'packforge batches'
  packforge resume --batch-id 4f1c9a2e-...`,
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeBatchID, "batch-id", "", "Batch to resume (default: newest unfinished)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stateStore, err := newStateStore(cfg)
	if err != nil {
		return err
	}
	defer stateStore.Close()

	var bs *state.BatchState
	if resumeBatchID != "" {
		bs, err = stateStore.GetBatch(ctx, resumeBatchID)
		if state.IsNotFound(err) {
			return printer.Error(
				fmt.Sprintf("batch %s not found", resumeBatchID),
				"No batch state with that ID exists in this instance.",
				[]string{"List known batches:\n  packforge batches"},
			)
		}
	} else {
		bs, err = stateStore.FindResumable(ctx)
		if errors.Is(err, state.ErrNoResumableBatch) {
			return printer.Error(
				"nothing to resume",
				"Every known batch already ran to completion.",
				[]string{"Start a new one:\n  packforge batch --input seeds.txt"},
			)
		}
	}
	if err != nil {
		return err
	}

	engine, err := engineFromSnapshot(cfg, bs.Config)
	if err != nil {
		return err
	}

	p, err := newPipeline(engine, bs.Config.Template)
	if err != nil {
		return err
	}

	draftStore, err := newDrafts(cfg)
	if err != nil {
		return err
	}

	runner := &batch.DraftRunner{
		Pipeline:   p,
		Drafts:     draftStore,
		Mode:       bs.Config.Mode,
		SingleShot: !bs.Config.Sequential,
	}

	printer.Info("Resuming batch %s (%s, %s)\n", bs.ID, bs.Config.Provider, bs.Config.Model)

	bs, err = batch.New(stateStore, runner).Resume(ctx, bs)
	if err != nil {
		return err
	}

	return reportBatch(bs)
}
