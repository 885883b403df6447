// Package config provides configuration management for storecore.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds all the path configurations for storecore.
// All paths are relative to the base directory (~/.storecore on Unix,
// %APPDATA%\storecore on Windows).
type Paths struct {
	// BaseDir is the root directory for all storecore files (~/.storecore).
	BaseDir string
}

// DefaultPaths returns the default paths.
// Unix: ~/.storecore
// Windows: %APPDATA%\storecore
func DefaultPaths() *Paths {
	if home := os.Getenv("STORECORE_HOME"); home != "" {
		return &Paths{BaseDir: home}
	}

	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return &Paths{BaseDir: filepath.Join(appData, "storecore")}
	}

	return &Paths{BaseDir: filepath.Join(home, ".storecore")}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir, "config.yaml")
}

// DatabaseFile returns the path to the long-lived writer's SQLite file.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.BaseDir, "index.sqlite3")
}

// LogFile returns the path to the log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.BaseDir, "storecore.log")
}

// EnsureDirectories creates the base directory if it doesn't exist.
func (p *Paths) EnsureDirectories() error {
	return os.MkdirAll(p.BaseDir, 0o755)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
