package contents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analysis.ipynb"), []byte("{}"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "nested.txt"), []byte("deep"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte(""), 0644))

	m, err := NewManager(dir)
	require.NoError(t, err)
	return m
}

func TestNewManagerRequiresDirectory(t *testing.T) {
	_, err := NewManager(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte(""), 0644))
	_, err = NewManager(file)
	assert.Error(t, err)
}

func TestGetRootListing(t *testing.T) {
	m := newTestManager(t)

	model, err := m.Get("", false)
	require.NoError(t, err)

	assert.Equal(t, "directory", model.Type)
	assert.Equal(t, "json", model.Format)

	children, ok := model.Content.([]*Model)
	require.True(t, ok)

	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name)
	}
	// Sorted, hidden files excluded
	assert.Equal(t, []string{"analysis.ipynb", "hello.txt", "sub"}, names)
}

func TestGetFileTypes(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		path     string
		wantType string
	}{
		{"hello.txt", "file"},
		{"analysis.ipynb", "notebook"},
		{"sub", "directory"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			model, err := m.Get(tt.path, false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, model.Type)
			assert.Equal(t, tt.path, model.Path)
		})
	}
}

func TestGetWithContent(t *testing.T) {
	m := newTestManager(t)

	model, err := m.Get("sub/nested.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "text", model.Format)
	assert.Equal(t, "deep", model.Content)
}

func TestGetMissingPath(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Get("nope.txt", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPathEscapeCollapsesToRoot(t *testing.T) {
	m := newTestManager(t)

	// Traversal segments are cleaned relative to the root, so this resolves
	// to <root>/etc (missing) instead of the real /etc
	model, err := m.Get("../../etc", false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, model)
}

func TestSaveAndDelete(t *testing.T) {
	m := newTestManager(t)

	model, err := m.Save("notes/todo.txt", "buy milk")
	require.NoError(t, err)
	assert.Equal(t, "file", model.Type)
	assert.Equal(t, "notes/todo.txt", model.Path)

	got, err := m.Get("notes/todo.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Content)

	require.NoError(t, m.Delete("notes/todo.txt"))
	_, err = m.Get("notes/todo.txt", false)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.Delete("notes/todo.txt"), ErrNotFound)
}
