// =============================================================================
// File Processing Engine - Directory Watcher
// =============================================================================
//
// The watcher lists the files in the source directory that are ready to be
// processed. It is polled by the dispatcher on every cycle and keeps no state
// between calls.
//
// ELIGIBILITY:
//   - Direct child of the source directory (no recursion)
//   - Regular file (directories and symlinks are skipped; links are not followed)
//   - Name ends with the configured extension (".txt" by default), case-sensitive
//
// =============================================================================

package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// DefaultExtension is the input extension used when none is configured.
const DefaultExtension = ".txt"

// =============================================================================
// ERRORS
// =============================================================================

// ErrDirectoryUnavailable is matched by errors.Is when a directory cannot be
// listed, read or written.
var ErrDirectoryUnavailable = errors.New("directory unavailable")

// DirectoryError carries the directory and the underlying cause.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("directory unavailable: %s: %v", e.Path, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *DirectoryError) Unwrap() []error {
	return []error{ErrDirectoryUnavailable, e.Err}
}

// =============================================================================
// WATCHER
// =============================================================================

// File is an eligible input file found during a scan.
type File struct {
	// Path is the full path of the file.
	Path string

	// Size and ModTime identify the file version; the dispatcher uses them
	// to notice when a failed file has been replaced.
	Size    int64
	ModTime time.Time
}

// Watcher lists eligible files in a single directory.
type Watcher struct {
	fs        afero.Fs
	dir       string
	extension string
}

// New creates a Watcher for dir. An empty extension means DefaultExtension.
// A nil fs means the real OS filesystem.
func New(fs afero.Fs, dir, extension string) *Watcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if extension == "" {
		extension = DefaultExtension
	}
	return &Watcher{fs: fs, dir: dir, extension: extension}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// ListEligibleFiles returns the eligible files currently in the directory.
//
// RETURNS:
//   - The eligible files, sorted by path. Callers must not rely on the order.
//   - A *DirectoryError if the directory cannot be listed.
func (w *Watcher) ListEligibleFiles() ([]File, error) {
	entries, err := afero.ReadDir(w.fs, w.dir)
	if err != nil {
		return nil, &DirectoryError{Path: w.dir, Err: err}
	}

	files := make([]File, 0, len(entries))
	for _, info := range entries {
		if !w.eligible(info) {
			continue
		}
		files = append(files, File{
			Path:    filepath.Join(w.dir, info.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// eligible applies the input-file predicate to a directory entry.
// ReadDir reports entries without following links, so a symlink has
// ModeSymlink set and is not regular.
func (w *Watcher) eligible(info os.FileInfo) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	return strings.HasSuffix(info.Name(), w.extension)
}
