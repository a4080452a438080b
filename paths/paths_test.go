package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNotelabHomeFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NOTELAB_HOME", dir)

	assert.Equal(t, dir, GetNotelabHome())
	assert.Equal(t, filepath.Join(dir, "config"), GetConfigDir())
	assert.Equal(t, filepath.Join(dir, "data"), GetDataDir())
	assert.Equal(t, filepath.Join(dir, "runtime"), GetRuntimeDir())
	assert.Equal(t, filepath.Join(dir, "settings.json"), GetSettingsPath())
}

func TestGetNotelabHomeDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NOTELAB_HOME", "")

	assert.Equal(t, filepath.Join(home, ".notelab"), GetNotelabHome())
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/notebooks", filepath.Join(home, "notebooks")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
