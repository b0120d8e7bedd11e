package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDataDirFor(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		home     string
		env      map[string]string
		expected string
	}{
		{
			name:     "XDG_DATA_HOME override",
			goos:     "linux",
			home:     "/home/ada",
			env:      map[string]string{"XDG_DATA_HOME": "/custom/data"},
			expected: filepath.Join("/custom/data", "kvbind"),
		},
		{
			name:     "linux home",
			goos:     "linux",
			home:     "/home/ada",
			expected: filepath.Join("/home/ada", ".local", "share", "kvbind"),
		},
		{
			name:     "darwin home",
			goos:     "darwin",
			home:     "/Users/ada",
			expected: filepath.Join("/Users/ada", "Library", "Application Support", "kvbind"),
		},
		{
			name:     "windows LOCALAPPDATA",
			goos:     "windows",
			home:     `C:\Users\ada`,
			env:      map[string]string{"LOCALAPPDATA": "/appdata"},
			expected: filepath.Join("/appdata", "kvbind"),
		},
		{
			name:     "windows home fallback",
			goos:     "windows",
			home:     "/users/ada",
			expected: filepath.Join("/users/ada", "AppData", "Local", "kvbind"),
		},
		{
			name:     "no home",
			goos:     "linux",
			expected: "./data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			if got := dataDirFor(tt.goos, tt.home, getenv); got != tt.expected {
				t.Errorf("dataDirFor(%s) = %s, expected %s", tt.goos, got, tt.expected)
			}
		})
	}
}

func TestDefaultDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != filepath.Join("/custom/data", "kvbind") {
		t.Errorf("Expected XDG override, got %s", got)
	}
}

func TestDefaultDataDirShape(t *testing.T) {
	result := DefaultDataDir()
	if result == "" {
		t.Fatal("DefaultDataDir should not return empty string")
	}
	if !strings.HasSuffix(result, "kvbind") && result != "./data" {
		t.Errorf("DefaultDataDir should end in kvbind, got %s", result)
	}
	if result != DefaultDataDir() {
		t.Errorf("DefaultDataDir should be stable")
	}
}
