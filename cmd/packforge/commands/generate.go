package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packforge/packforge/internal/pipeline"
	"github.com/packforge/packforge/internal/printer"
)

var (
	generateSeed       string
	generateMode       string
	generateStream     bool
	generateSingleShot bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one character pack from a seed",
	Long: `Generate a complete character pack from a single seed request.

Assets are generated one at a time in dependency order, with every earlier
asset fed back as labeled context. The finished pack is written as a draft
directory with one markdown file per asset.

Examples:
  # Generate with the built-in template
  packforge generate --seed "a smuggler turned botanist"

  # Watch the model write each asset as it streams
  packforge generate --stream --seed "a retired oracle who lies"

  # One combined request instead of one per asset
  packforge generate --single-shot --seed "a cartographer of dead cities"`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateSeed, "seed", "s", "", "Seed request describing the character (required)")
	generateCmd.Flags().StringVarP(&generateMode, "mode", "m", "", "Generation mode hint passed to every request")
	generateCmd.Flags().BoolVar(&generateStream, "stream", false, "Stream generated text to the terminal as it arrives")
	generateCmd.Flags().BoolVar(&generateSingleShot, "single-shot", false, "Generate the whole pack in one combined request")
	generateCmd.MarkFlagRequired("seed")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
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

	store, err := newDrafts(cfg)
	if err != nil {
		return err
	}

	printer.Info("Generating %d assets: %v\n", len(p.Order()), p.Order())

	var result *pipeline.Result
	switch {
	case generateSingleShot:
		result, err = p.RunSingleShot(ctx, generateSeed, generateMode)
	case generateStream:
		var current string
		result, err = p.RunStreaming(ctx, generateSeed, generateMode, func(asset, chunk string) {
			if asset != current {
				current = asset
				printer.Step("%s\n", asset)
			}
			printer.Chunk(chunk)
		})
		printer.Println()
	default:
		result, err = p.Run(ctx, generateSeed, generateMode)
	}
	if err != nil {
		return printer.Error(
			"generation failed",
			err.Error(),
			[]string{"The job is atomic; nothing was written. Retry with the same seed."},
		)
	}

	identifier := result.Identifier
	if !result.IdentifierFound {
		identifier = "character_001"
		printer.Warning("no character name found in the model output; using fallback identifier\n")
	}

	location, err := store.Save(generateSeed, identifier, result.Assets)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	printer.Success("Character pack written: %s\n", location)
	return nil
}
