package commands

import (
	"github.com/spf13/cobra"

	"github.com/packforge/packforge/internal/printer"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and template without generating anything",
	Long: `Validate packforge.yml and the configured template.

The template's dependency graph is resolved, so circular dependencies,
missing blueprints, and misconfigured identity assets are reported here
instead of mid-batch.

Examples:
  packforge validate
  packforge validate --config staging.yml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return printer.Error("configuration invalid", err.Error(), nil)
	}
	printer.Success("configuration valid (provider: %s, model: %s)\n", cfg.Provider, cfg.Model)

	tmpl, err := loadTemplate(cfg.Template)
	if err != nil {
		return printer.Error("template invalid", err.Error(), nil)
	}

	order, err := tmpl.ActiveOrder()
	if err != nil {
		return printer.Error("template invalid", err.Error(), nil)
	}

	printer.Success("template '%s' valid\n", tmpl.Name)
	printer.Info("Generation order: %v\n", order)
	return nil
}
