package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packforge/packforge/internal/state"
)

var batchesOutput string

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List persisted batch states",
	Long: `List every batch state persisted in this instance, newest first.

Batches that finished with zero failures are deleted automatically, so the
list shows running, cancelled, and completed-with-failures batches.

Examples:
  # Table view
  packforge batches

  # Machine-readable, for jq
  packforge batches --output jsonl`,
	RunE: runBatches,
}

func init() {
	batchesCmd.Flags().StringVarP(&batchesOutput, "output", "o", "table", "Output format: table or jsonl")
	rootCmd.AddCommand(batchesCmd)
}

func runBatches(cmd *cobra.Command, args []string) error {
	if batchesOutput != "table" && batchesOutput != "jsonl" {
		return fmt.Errorf("invalid output format: %s (must be 'table' or 'jsonl')", batchesOutput)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stateStore, err := newStateStore(cfg)
	if err != nil {
		return err
	}
	defer stateStore.Close()

	batches, err := stateStore.ListBatches(context.Background())
	if err != nil {
		return err
	}

	if batchesOutput == "jsonl" {
		return state.FormatJSONL(os.Stdout, batches)
	}
	state.FormatTable(os.Stdout, batches, cfg.Instance)
	return nil
}
