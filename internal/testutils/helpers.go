package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// WriteContent creates a temporary content directory holding files, keyed by
// slash-separated path relative to the directory. It returns the absolute path.
func WriteContent(t *testing.T, files map[string]string) string {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	AddContent(t, dir, files)
	return dir
}

// AddContent writes files below an existing content directory.
func AddContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755), "Failed to create %s", filepath.Dir(p))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644), "Failed to write %s", p)
	}
}

// SetupTestRepo writes files into a temporary directory and initializes a
// read-only Loam repository over it, the way the loam backend opens content.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, files map[string]string, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	dir := WriteContent(t, files)

	opts = append([]loam.Option{loam.WithStrict(true), loam.WithReadOnly(true)}, opts...)
	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return dir, repo
}
