// =============================================================================
// File Processing Engine - Report Writer
// =============================================================================
//
// This module renders a file summary to the fixed four-line text report and
// persists it in the destination directory.
//
// OUTPUT FORMAT:
//   -> Number of Clients found in the file: <clients>
//   -> Number of Sellers found in the file: <sellers>
//   -> Sales id of the biggest sale: <sale id | none>
//   -> Name of the Seller that sold less items: <seller | none>
//
// FILE NAMING:
//   orders.txt -> orders.done.txt
//
// DURABILITY:
//   The report is written atomically (temp file, fsync, rename). Write returns
//   only after the final file is in place; the caller may then delete the input.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/file-processing-engine/internal/sales"
	"github.com/ginjaninja78/file-processing-engine/internal/watcher"
	"github.com/ginjaninja78/file-processing-engine/pkg/utils"
)

// =============================================================================
// FORMAT CONSTANTS
// =============================================================================

const (
	clientsLabel = "-> Number of Clients found in the file: "
	sellersLabel = "-> Number of Sellers found in the file: "
	topSaleLabel = "-> Sales id of the biggest sale: "
	leastLabel   = "-> Name of the Seller that sold less items: "

	// None is rendered in place of a sale id or seller when the file had no sales.
	None = "none"

	// DoneMarker is inserted before the extension of the output file name.
	DoneMarker = ".done"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrWriteFailure is matched by errors.Is when a report cannot be persisted.
var ErrWriteFailure = errors.New("report write failure")

// WriteError describes a failed report write.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("report %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *WriteError) Unwrap() []error {
	return []error{ErrWriteFailure, e.Err}
}

// =============================================================================
// RENDERING
// =============================================================================

// Render returns the report text for a summary.
func Render(s sales.Summary) string {
	top, least := None, None
	if s.HasSales {
		top, least = s.TopSaleID, s.LeastActiveSeller
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%d\n", clientsLabel, s.ClientCount)
	fmt.Fprintf(&b, "%s%d\n", sellersLabel, s.SellerCount)
	fmt.Fprintf(&b, "%s%s\n", topSaleLabel, top)
	fmt.Fprintf(&b, "%s%s\n", leastLabel, least)
	return b.String()
}

// OutputName maps an input file name to its report name.
//
// PARAMETERS:
//   - inputName: The input file name or path. Only the base name is used.
//   - extension: The input extension, e.g. ".txt".
//
// RETURNS:
//   - "<stem>.done<extension>". A name without the extension keeps its full
//     base name as the stem.
func OutputName(inputName, extension string) string {
	if extension == "" {
		extension = ".txt"
	}
	base := filepath.Base(inputName)
	return strings.TrimSuffix(base, extension) + DoneMarker + extension
}

// =============================================================================
// WRITER
// =============================================================================

// Writer persists reports into a destination directory.
type Writer struct {
	files     *utils.FileManager
	dir       string
	extension string
}

// NewWriter creates a Writer for the destination directory dir.
func NewWriter(files *utils.FileManager, dir, extension string) *Writer {
	if extension == "" {
		extension = ".txt"
	}
	return &Writer{files: files, dir: dir, extension: extension}
}

// Dir returns the destination directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Ready checks that the destination directory can receive reports.
//
// RETURNS:
//   - nil if the directory exists and is a directory.
//   - A *watcher.DirectoryError (matching watcher.ErrDirectoryUnavailable).
func (w *Writer) Ready() error {
	if err := w.files.CheckDirectory(w.dir); err != nil {
		return &watcher.DirectoryError{Path: w.dir, Err: err}
	}
	return nil
}

// Write renders the summary and stores it as the report of inputName.
//
// RETURNS:
//   - The path of the written report.
//   - A *WriteError (matching ErrWriteFailure) if the report cannot be persisted.
//     When the destination directory itself is gone, the error also matches
//     watcher.ErrDirectoryUnavailable.
func (w *Writer) Write(inputName string, s sales.Summary) (string, error) {
	name := OutputName(inputName, w.extension)

	if err := w.Ready(); err != nil {
		return "", &WriteError{Op: "check", Path: w.dir, Err: err}
	}

	path, err := w.files.WriteFileAtomic(w.dir, name, []byte(Render(s)))
	if err != nil {
		// The directory may have disappeared between the check and the write.
		if rerr := w.Ready(); rerr != nil {
			err = rerr
		}
		return "", &WriteError{Op: "write", Path: filepath.Join(w.dir, name), Err: err}
	}

	return path, nil
}
