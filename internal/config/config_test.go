package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg != def {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, def)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("search_limit: 10\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SearchLimit != 10 {
		t.Errorf("SearchLimit = %d, want 10", cfg.SearchLimit)
	}
	if cfg.DataDir != Default().DataDir {
		t.Errorf("DataDir = %q, want default", cfg.DataDir)
	}
	if cfg.ChangelogLimit != Default().ChangelogLimit {
		t.Errorf("ChangelogLimit = %d, want default", cfg.ChangelogLimit)
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "data_dir: /var/lib/agentplan\nsearch_limit: 25\nchangelog_limit: 500\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/var/lib/agentplan" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.SearchLimit != 25 || cfg.ChangelogLimit != 500 {
		t.Errorf("limits = %d/%d", cfg.SearchLimit, cfg.ChangelogLimit)
	}
}

func TestLoad_NonPositiveLimitsReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("search_limit: -1\nchangelog_limit: 0\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SearchLimit != Default().SearchLimit {
		t.Errorf("SearchLimit = %d, want default", cfg.SearchLimit)
	}
	if cfg.ChangelogLimit != Default().ChangelogLimit {
		t.Errorf("ChangelogLimit = %d, want default", cfg.ChangelogLimit)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: [broken\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load succeeded on malformed YAML")
	}
}
