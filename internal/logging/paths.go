package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory, next to the user
// configuration. Falls back to the temp directory if the home directory
// is unavailable.
func DefaultLogDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "jlawgrep", "logs")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "jlawgrep", "logs")
}

// DefaultLogPath returns the default client log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "client.log")
}
