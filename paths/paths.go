package paths

import (
	"os"
	"path/filepath"
)

// GetNotelabHome returns NOTELAB_HOME or ~/.notelab default
func GetNotelabHome() string {
	notelabHome := os.Getenv("NOTELAB_HOME")
	if notelabHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".notelab"
		}
		return filepath.Join(homeDir, ".notelab")
	}
	return ExpandPath(notelabHome)
}

// GetConfigDir returns $NOTELAB_HOME/config
func GetConfigDir() string {
	return filepath.Join(GetNotelabHome(), "config")
}

// GetDataDir returns $NOTELAB_HOME/data
func GetDataDir() string {
	return filepath.Join(GetNotelabHome(), "data")
}

// GetRuntimeDir returns $NOTELAB_HOME/runtime
func GetRuntimeDir() string {
	return filepath.Join(GetNotelabHome(), "runtime")
}

// GetSettingsPath returns $NOTELAB_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetNotelabHome(), "settings.json")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
