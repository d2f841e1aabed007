package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "packforge",
	Short: "Packforge - LLM-driven character pack generator",
	Long: `Packforge turns one-line character seeds into complete character packs:
a set of interdependent markdown assets (profile, appearance, personality,
backstory, voice) generated asset by asset, with earlier assets fed back as
context for the later ones.

Batches run with per-seed crash recovery backed by Redis, so an interrupted
run resumes exactly where it stopped without repeating finished work.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to packforge.yml (default: ./packforge.yml)")
}
