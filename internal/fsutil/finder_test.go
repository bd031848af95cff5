package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	for _, name := range []string{"a.json", "b.YAML", "nested/c.gob", "notes.txt"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	}

	// --- Act ---
	files, err := FindFilesByExtension(root, ".json", ".yaml", ".gob")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.json"),
		filepath.Join(root, "b.YAML"),
		filepath.Join(root, "nested", "c.gob"),
	}, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".json")
	require.Error(t, err)
}

func TestFindFilesByExtension_PanicsWithoutExtensions(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtension(".") })
}

func TestTrimExt(t *testing.T) {
	assert.Equal(t, "montreal", TrimExt("/data/graphs/montreal.json"))
	assert.Equal(t, "paris.v2", TrimExt("paris.v2.gob"))
	assert.Equal(t, "plain", TrimExt("plain"))
}
