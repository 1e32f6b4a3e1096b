// =============================================================================
// File Processing Engine - Main Entry Point
// =============================================================================
//
// This is the main entry point for the File Processing Engine CLI. It hands
// control to the Cobra commands in the cmd package.
//
// USAGE:
//   engine run        - Watch the source directory and process sales files
//   engine config     - Print the effective configuration
//   engine export     - Collect written reports into an XLSX workbook
//   engine version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Engine logic (parsing, aggregation, reports, scheduling)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/file-processing-engine/cmd"
)

func main() {
	cmd.Execute()
}
