package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputImportPath(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "go.mod"),
		[]byte("module example.com/myapp\n\ngo 1.24\n"),
		0o644,
	))

	out := filepath.Join(root, "internal", "bindings")
	require.NoError(t, os.MkdirAll(out, 0o755))

	got, err := OutputImportPath(root, out)
	require.NoError(t, err)
	assert.Equal(t, "example.com/myapp/internal/bindings", got)

	// Walks up from a nested directory to the module root.
	got, err = OutputImportPath(out, out)
	require.NoError(t, err)
	assert.Equal(t, "example.com/myapp/internal/bindings", got)

	// Module root itself.
	got, err = OutputImportPath(root, root)
	require.NoError(t, err)
	assert.Equal(t, "example.com/myapp", got)
}

func TestOutputImportPathNoModule(t *testing.T) {
	dir := t.TempDir()

	_, err := OutputImportPath(dir, dir)
	assert.ErrorContains(t, err, "no go.mod")
}

func TestOutputImportPathOutsideModule(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "go.mod"),
		[]byte("module example.com/myapp\n"),
		0o644,
	))

	_, err := OutputImportPath(root, t.TempDir())
	assert.Error(t, err)
}
