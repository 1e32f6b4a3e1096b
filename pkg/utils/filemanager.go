// =============================================================================
// File Processing Engine - File Manager Utility
// =============================================================================
//
// This module provides the filesystem operations shared by the watcher, the
// report writer and the file task processor:
//   - Directory checks (exists, is a directory)
//   - Atomic file writes (temp file + fsync + rename)
//   - Input removal after successful processing
//
// All operations go through an afero.Fs so tests can run against an
// in-memory filesystem.
//
// WRITE STRATEGY:
//   - Content is written to a hidden, uniquely named temp file in the target
//     directory, synced, then renamed over the final name.
//   - A failed write removes the temp file; the final name never holds a
//     partial file.
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager performs filesystem operations on behalf of the engine.
type FileManager struct {
	fs afero.Fs

	// FileMode is the permission set on written files.
	FileMode os.FileMode
}

// NewFileManager creates a FileManager on top of the given filesystem.
// A nil fs means the real OS filesystem.
func NewFileManager(fs afero.Fs) *FileManager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileManager{
		fs:       fs,
		FileMode: 0644,
	}
}

// Fs returns the underlying filesystem.
func (fm *FileManager) Fs() afero.Fs {
	return fm.fs
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// ErrNotDirectory is returned by CheckDirectory when the path exists but is
// not a directory.
var ErrNotDirectory = errors.New("not a directory")

// CheckDirectory verifies that dir exists and is a directory.
//
// RETURNS:
//   - nil if the directory is usable.
//   - The stat error, or ErrNotDirectory.
func (fm *FileManager) CheckDirectory(dir string) error {
	info, err := fm.fs.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}
	return nil
}

// =============================================================================
// FILE OPERATIONS
// =============================================================================

// WriteFileAtomic writes data to dir/name so that readers either see the
// complete file or nothing.
//
// PARAMETERS:
//   - dir: The target directory. It must already exist.
//   - name: The final file name.
//   - data: The full file content.
//
// RETURNS:
//   - The path of the written file.
//   - An error if any step fails. The temp file is removed on failure.
func (fm *FileManager) WriteFileAtomic(dir, name string, data []byte) (string, error) {
	finalPath := filepath.Join(dir, name)
	tmpPath := filepath.Join(dir, "."+name+"."+uuid.NewString()+".tmp")

	f, err := fm.fs.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fm.FileMode)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		fm.fs.Remove(tmpPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		fm.fs.Remove(tmpPath)
		return "", fmt.Errorf("sync temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		fm.fs.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := fm.fs.Rename(tmpPath, finalPath); err != nil {
		fm.fs.Remove(tmpPath)
		return "", fmt.Errorf("rename temp file: %w", err)
	}

	return finalPath, nil
}

// Remove deletes a single file.
func (fm *FileManager) Remove(path string) error {
	return fm.fs.Remove(path)
}

// FileExists reports whether path exists.
func (fm *FileManager) FileExists(path string) bool {
	ok, err := afero.Exists(fm.fs, path)
	return err == nil && ok
}
