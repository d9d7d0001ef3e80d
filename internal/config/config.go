// Package config loads the agentplan configuration file.
//
// Configuration lives at ~/.agentplan/config.yaml and is entirely
// optional: a missing file yields the defaults, so the server runs with
// zero setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration.
type Config struct {
	// DataDir is where the SQLite database lives.
	DataDir string `yaml:"data_dir"`
	// SearchLimit caps the number of search results per query.
	SearchLimit int `yaml:"search_limit"`
	// ChangelogLimit caps the number of changelog entries returned when
	// the caller does not pass an explicit limit.
	ChangelogLimit int `yaml:"changelog_limit"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:        filepath.Join(home, ".agentplan"),
		SearchLimit:    50,
		ChangelogLimit: 100,
	}
}

// DefaultPath returns the standard location of the configuration file.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".agentplan", "config.yaml")
}

// Load reads the configuration file at path, falling back to
// DefaultPath when path is empty. A missing file is not an error —
// defaults are returned. Fields absent from the file keep their
// defaults; non-positive limits are reset to them.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = def.SearchLimit
	}
	if cfg.ChangelogLimit <= 0 {
		cfg.ChangelogLimit = def.ChangelogLimit
	}
	return cfg, nil
}
