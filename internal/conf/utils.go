package conf

import (
	"os"
	"path/filepath"
)

// appDirName is the per-user configuration directory name
const appDirName = "wildlife-analytics"

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in priority order: the working directory, the user config directory and
// the system-wide directory.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", appDirName))
	}

	return append(paths, filepath.Join("/etc", appDirName))
}
