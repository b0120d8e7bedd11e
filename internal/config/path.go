package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDir = "kvbind"

// DefaultDataDir returns the per-user store directory for this host. It falls
// back to ./data when no home directory is known.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return dataDirFor(runtime.GOOS, home, os.Getenv)
}

// dataDirFor resolves the data directory for goos. XDG_DATA_HOME wins on
// every platform; LOCALAPPDATA is honoured on Windows.
func dataDirFor(goos, home string, getenv func(string) string) string {
	if xdg := getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	switch goos {
	case "windows":
		if local := getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appDir)
		}
		if home != "" {
			return filepath.Join(home, "AppData", "Local", appDir)
		}
	case "darwin":
		if home != "" {
			return filepath.Join(home, "Library", "Application Support", appDir)
		}
	default:
		if home != "" {
			return filepath.Join(home, ".local", "share", appDir)
		}
	}
	return "./data"
}
