// =============================================================================
// File Processing Engine - Export Command
// =============================================================================
//
// This file defines the 'export' command, which collects the reports in the
// destination directory into one XLSX workbook with a row per report.
//
// COMMAND USAGE:
//   engine export --out reports.xlsx
//
// Files in the destination directory that are not well-formed reports are
// skipped and listed in the log.
//
// =============================================================================

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ginjaninja78/file-processing-engine/internal/config"
	"github.com/ginjaninja78/file-processing-engine/internal/report"
	"github.com/ginjaninja78/file-processing-engine/pkg/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// exportOut is the workbook path.
var exportOut string

// exportCmd represents the 'export' command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Collect written reports into an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return exportReports(cmd, afero.NewOsFs(), cfg, exportOut)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("destination", "", "Directory holding the reports")
	exportCmd.Flags().String("extension", "", "Input file extension the reports were written with")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "reports.xlsx", "Workbook to write")
}

// exportReports reads every report under cfg.Destination.Path and writes
// the workbook to out.
func exportReports(cmd *cobra.Command, fs afero.Fs, cfg *config.Config, out string) error {
	if cfg.Destination.Path == "" {
		return errors.New("destination.path is required")
	}
	if filepath.Ext(out) != ".xlsx" {
		return fmt.Errorf("output %q must have the .xlsx extension", out)
	}

	logger, err := newLogger(cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	entries, skipped, err := report.Load(fs, cfg.Destination.Path, cfg.Source.Extension)
	if err != nil {
		return err
	}
	for _, name := range skipped {
		logger.Warn("Skipping %s: not a report", name)
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, entries); err != nil {
		return err
	}

	files := utils.NewFileManager(fs)
	path, err := files.WriteFileAtomic(filepath.Dir(out), filepath.Base(out), buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d report(s) to %s\n", len(entries), path)
	return nil
}
