package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Nil(t, settings.Port)
	assert.Empty(t, settings.NotebookDir)
}

func TestLoadSettingsFromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".notelab")
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := `{"port": 9999, "notebook_dir": "~/notebooks", "debug": true}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(content), 0644))

	settings, err := LoadSettings()
	require.NoError(t, err)
	require.NotNil(t, settings.Port)
	assert.Equal(t, 9999, *settings.Port)
	require.NotNil(t, settings.Debug)
	assert.True(t, *settings.Debug)
	// ~ expanded against the temp HOME
	assert.Equal(t, filepath.Join(home, "notebooks"), settings.NotebookDir)
}

func TestLoadSettingsInvalidJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".notelab")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{broken"), 0644))

	_, err := LoadSettings()
	assert.Error(t, err)
}
