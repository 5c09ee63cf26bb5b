package paths

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.evbus.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".evbus")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// DefaultDataDir returns the data directory used when none is configured.
func DefaultDataDir() string {
	return filepath.Join(BaseDir(), "data")
}

// LockPath returns the lock file path inside a data directory.
func LockPath(dataDir string) string {
	return filepath.Join(dataDir, "LOCK")
}

// JournalPath returns the fire journal database path.
func JournalPath(dataDir string) string {
	return filepath.Join(dataDir, "journal.db")
}

// LogDir returns the log directory inside a data directory.
func LogDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// LogPath returns the log file path.
func LogPath(dataDir string) string {
	return filepath.Join(LogDir(dataDir), "evbus.log")
}

// EnsureDataDir creates the data directory tree with proper permissions.
func EnsureDataDir(dataDir string) error {
	for _, d := range []string{dataDir, LogDir(dataDir)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
