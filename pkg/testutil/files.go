package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/deployer/pkg/types"
	"github.com/stretchr/testify/require"
)

// WriteFiles creates every file in files, keyed by path, with its parent
// directories. Paths use '/' and are joined under root.
func WriteFiles(t *testing.T, fsys types.FS, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
	}
}

// WriteFileWithTime creates a file and sets its modification time.
func WriteFileWithTime(t *testing.T, fsys types.FS, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
	require.NoError(t, fsys.Chtimes(path, mtime, mtime))
}

// ReadString returns the content of path, failing the test when it cannot
// be read.
func ReadString(t *testing.T, fsys types.FS, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Exists reports whether path exists.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}
