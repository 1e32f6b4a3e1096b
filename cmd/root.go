// =============================================================================
// File Processing Engine - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (engine)
//   ├── runCmd     (engine run)
//   ├── configCmd  (engine config)
//   ├── exportCmd  (engine export)
//   └── versionCmd (engine version)
//
// The root command owns the global flags (--config, --verbose, --log-level)
// and the helpers that turn them into a loaded configuration and a logger.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/file-processing-engine/internal/config"
	"github.com/ginjaninja78/file-processing-engine/internal/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// When empty, config.yaml (or .json/.toml) in the working directory is used
// if present.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// logPrefix tags every line the engine logs.
const logPrefix = "engine"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "File Processing Engine - Summarize sales batch files dropped into a directory",
	Long: `File Processing Engine watches a source directory for sales batch files,
summarizes each one and writes a report to a destination directory.

For every input file the report holds:
  - the number of client records
  - the number of seller records
  - the sale with the highest revenue
  - the seller with the fewest items sold

The input file is deleted only after its report is safely on disk. Files that
fail stay in place and are retried once they change.

Example Usage:
  engine run --source ./in --destination ./out   # Watch until interrupted
  engine run --once                              # Process what is there, then exit
  engine config                                  # Show the effective configuration
  engine export --out reports.xlsx               # Collect reports into a workbook`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (YAML, JSON or TOML)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().String(
		"log-level",
		"info",
		"Log level: debug, info, warn or error",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig merges the configuration file, environment and the flags of cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the engine logger at level, writing to w.
func newLogger(level string, w io.Writer) (logging.Logger, error) {
	return logging.New(logPrefix, level, w)
}
