package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	t.Run("recursive and sorted", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "b.hcl"))
		touch(t, filepath.Join(dir, "a.hcl"))
		touch(t, filepath.Join(dir, "nested", "c.hcl"))
		touch(t, filepath.Join(dir, "ignored.txt"))

		files, err := FindFilesByExtension(dir, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.hcl"),
			filepath.Join(dir, "b.hcl"),
			filepath.Join(dir, "nested", "c.hcl"),
		}, files)
	})

	t.Run("single file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "request.hcl")
		touch(t, path)

		files, err := FindFilesByExtension(path, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{path}, files)
	})

	t.Run("single file wrong extension", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "request.txt")
		touch(t, path)

		files, err := FindFilesByExtension(path, ".hcl")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".hcl")
		assert.Error(t, err)
	})
}
