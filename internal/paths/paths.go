// Package paths resolves where conceptnav keeps its config, cache and traces.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "conceptnav"

// LocalConfigFile is the project-local config, checked before the user one.
const LocalConfigFile = ".conceptnav/config.yaml"

// ConfigDir returns ~/.config/conceptnav, or "" if the home dir is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// CacheDir returns the user cache dir for conceptnav. It honours
// XDG_CACHE_HOME and falls back to ~/.cache.
func CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", appName)
}

// DefaultConfigPath is where a missing config file is written.
func DefaultConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return LocalConfigFile
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultCachePath is the sqlite response cache.
func DefaultCachePath() string {
	dir := CacheDir()
	if dir == "" {
		return filepath.Join("."+appName, "responses.db")
	}
	return filepath.Join(dir, "responses.db")
}

// DefaultTracesPath is the file exporter's output.
func DefaultTracesPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}
