// =============================================================================
// File Processing Engine - Config Command
// =============================================================================
//
// COMMAND USAGE:
//   engine config [--check]
//
// Prints the configuration the engine would run with, after merging the
// configuration file, ENGINE_* environment variables and flags. With --check
// the directories are validated as well.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// checkConfig validates the directories after printing.
var checkConfig bool

// configCmd represents the 'config' command.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out, err := cfg.YAML()
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}

		w := cmd.OutOrStdout()
		if cfg.File != "" {
			fmt.Fprintf(w, "# %s\n", cfg.File)
		}
		w.Write(out)

		if checkConfig {
			if err := cfg.Validate(afero.NewOsFs()); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			fmt.Fprintln(w, "# configuration is valid")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().String("source", "", "Directory scanned for input files")
	configCmd.Flags().String("destination", "", "Directory receiving the reports")
	configCmd.Flags().BoolVar(&checkConfig, "check", false, "Also validate the configured directories")
}
