// =============================================================================
// File Processing Engine - Run Command
// =============================================================================
//
// This file defines the 'run' command, which starts the engine.
//
// COMMAND USAGE:
//   engine run [flags]
//
// FLAGS:
//   --source       : Directory scanned for input files
//   --destination  : Directory receiving the reports
//   --extension    : Input file extension (default .txt)
//   --interval     : Pause between scans (default 2s)
//   --workers      : Worker pool size (default 2 × CPUs)
//   --once         : Process the files present now, then exit
//
// PROCESSING PIPELINE (per file, on a pool worker):
//   1. Read the file line by line and classify every record
//   2. Aggregate clients, sellers, sale revenue and items per seller
//   3. Write the report atomically to the destination directory
//   4. Delete the input file
//
// The daemon stops on SIGINT or SIGTERM. In --once mode the exit status is
// non-zero when any file failed.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ginjaninja78/file-processing-engine/internal/config"
	"github.com/ginjaninja78/file-processing-engine/internal/dispatcher"
	"github.com/ginjaninja78/file-processing-engine/internal/processor"
	"github.com/ginjaninja78/file-processing-engine/internal/report"
	"github.com/ginjaninja78/file-processing-engine/internal/watcher"
	"github.com/ginjaninja78/file-processing-engine/pkg/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// once processes the current directory contents and exits.
var once bool

// runCmd represents the 'run' command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the source directory and process sales files",
	Long: `The run command polls the source directory and processes every eligible file
on a bounded pool of workers.

On success:
  - <name>.done<ext> is written to the destination directory
  - The input file is deleted

On error:
  - The input file stays in the source directory
  - It is not retried until its size or modification time changes
  - Other files keep being processed`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runEngine(ctx, cmd, afero.NewOsFs(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("source", "", "Directory scanned for input files")
	runCmd.Flags().String("destination", "", "Directory receiving the reports")
	runCmd.Flags().String("extension", watcher.DefaultExtension, "Input file extension")
	runCmd.Flags().Duration("interval", dispatcher.DefaultPollInterval, "Pause between directory scans")
	runCmd.Flags().Int("workers", 0, "Worker pool size (0 means 2 × CPUs)")
	runCmd.Flags().BoolVar(&once, "once", false, "Process the files present now, then exit")
}

// runEngine wires the watcher, processor and dispatcher on fs and runs them.
//
// PARAMETERS:
//   - ctx: Cancelled to stop the daemon.
//   - cmd: Supplies the output streams.
//   - fs: The filesystem holding both directories.
//   - cfg: The loaded configuration; it is validated against fs first.
//
// RETURNS:
//   - An error if the configuration is invalid, or, in --once mode, if any
//     file failed.
func runEngine(ctx context.Context, cmd *cobra.Command, fs afero.Fs, cfg *config.Config) error {
	if err := cfg.Validate(fs); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	files := utils.NewFileManager(fs)
	reports := report.NewWriter(files, cfg.Destination.Path, cfg.Source.Extension)
	proc := processor.New(files, reports, logger)
	disp := dispatcher.New(watcher.New(fs, cfg.Source.Path, cfg.Source.Extension), proc, dispatcher.Options{
		Workers:      cfg.Workers,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
		Destination:  reports,
	})

	logger.Info("Watching %s for *%s, reports go to %s", cfg.Source.Path, cfg.Source.Extension, cfg.Destination.Path)

	if !once {
		return disp.Run(ctx)
	}

	started := time.Now()
	stats := disp.RunOnce(ctx)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Processing Complete ===")
	fmt.Fprintf(out, "Submitted:       %d\n", stats.Submitted)
	fmt.Fprintf(out, "Successful:      %d\n", stats.Succeeded)
	fmt.Fprintf(out, "Errors:          %d\n", stats.Failed)
	fmt.Fprintf(out, "Requeued:        %d\n", stats.Requeued)
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(started).Round(time.Millisecond))

	if stats.Failed > 0 || stats.Requeued > 0 {
		return fmt.Errorf("%d file(s) failed and %d were not processed, they remain in %s",
			stats.Failed, stats.Requeued, cfg.Source.Path)
	}
	return nil
}
