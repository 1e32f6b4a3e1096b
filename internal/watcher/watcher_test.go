package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestListEligibleFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/in/nested", 0755))
	require.NoError(t, afero.WriteFile(fs, "/in/b.txt", []byte("001,A"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/a.txt", []byte("001,A"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/notes.csv", []byte("x"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/UPPER.TXT", []byte("x"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/nested/deep.txt", []byte("x"), 0644))
	require.NoError(t, fs.MkdirAll("/in/dir.txt", 0755))

	w := New(fs, "/in", "")
	files, err := w.ListEligibleFiles()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"/in/a.txt", "/in/b.txt"}, paths(files))
	assert.Equal(t, int64(5), files[0].Size)
}

func TestListEligibleFiles_CustomExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/a.dat", []byte("x"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/b.txt", []byte("x"), 0644))

	files, err := New(fs, "/in", ".dat").ListEligibleFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/a.dat"}, paths(files))
}

func TestListEligibleFiles_Empty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/in", 0755))

	files, err := New(fs, "/in", "").ListEligibleFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListEligibleFiles_MissingDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := New(fs, "/nope", "").ListEligibleFiles()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDirectoryUnavailable))

	var de *DirectoryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "/nope", de.Path)
}

func TestListEligibleFiles_SkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("001,A"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(target, "other.txt"), []byte("001,A"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(target, "sub"), 0755))

	if err := os.Symlink(filepath.Join(target, "other.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(target, "sub"), filepath.Join(dir, "dirlink.txt")))

	files, err := New(afero.NewOsFs(), dir, "").ListEligibleFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "real.txt")}, paths(files))
}
