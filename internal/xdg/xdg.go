// Package xdg resolves kernval's per-user directories following the XDG base
// directory layout.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "kernval"

type XDGDirs struct {
	configHome string
	stateHome  string
	cacheHome  string
}

// NewXDGDirs reads XDG_CONFIG_HOME, XDG_STATE_HOME and XDG_CACHE_HOME,
// falling back to the usual locations under the home directory.
func NewXDGDirs() *XDGDirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = os.TempDir()
		}
	}

	return &XDGDirs{
		configHome: envOr("XDG_CONFIG_HOME", filepath.Join(homeDir, ".config")),
		stateHome:  envOr("XDG_STATE_HOME", filepath.Join(homeDir, ".local", "state")),
		cacheHome:  envOr("XDG_CACHE_HOME", filepath.Join(homeDir, ".cache")),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" && filepath.IsAbs(v) {
		return v
	}
	return fallback
}

// WorkDir is the default shared working directory for a board's vector
// files. It only holds regenerable data, so it lives under the cache.
func (x *XDGDirs) WorkDir(board string) string {
	return filepath.Join(x.cacheHome, appName, "work", board)
}

// ReportDir is where run reports are kept unless a path is given.
func (x *XDGDirs) ReportDir() string {
	return filepath.Join(x.stateHome, appName, "reports")
}

// CatalogFile is the optional user catalog merged over the built-in one.
func (x *XDGDirs) CatalogFile() string {
	return filepath.Join(x.configHome, appName, "catalog.toml")
}

// EnsureDir creates the directory if it doesn't exist
func (x *XDGDirs) EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
