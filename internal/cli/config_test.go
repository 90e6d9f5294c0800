package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/pkgnorm/pkg/cache"
	"github.com/matzehuels/pkgnorm/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if !cfg.noExtra() {
		t.Error("no_extra should default to true")
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
	if got := cfg.Paths["bigquery"].Input; got != "data/input/bq_results.json" {
		t.Errorf("bigquery input = %q", got)
	}
	if ttl, _ := cfg.cacheTTL(); ttl != cache.DefaultTTL {
		t.Errorf("cacheTTL = %v, want default", ttl)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(xdg, appName, "config.toml") {
		t.Errorf("configPath() = %q", path)
	}

	writeAt(t, path, "strict = true\n")
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if !cfg.Strict {
		t.Error("default config file should be read")
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
timezone = "Europe/Amsterdam"
no_extra = false
include_dev = true

[cache]
redis_url = "redis://localhost:6379/0"
ttl = "36h"

[store]
mongo_uri = "mongodb://localhost:27017"
collection = "pypi"

[paths.pypicache]
output = "out/pypi.json"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Timezone != "Europe/Amsterdam" || cfg.noExtra() || !cfg.IncludeDev {
		t.Errorf("top-level keys not applied: %+v", cfg)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if ttl, _ := cfg.cacheTTL(); ttl != 36*time.Hour {
		t.Errorf("cacheTTL = %v, want 36h", ttl)
	}
	if cfg.Store.Collection != "pypi" || cfg.Store.Database != "pkgnorm" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	p := cfg.Paths["pypicache"]
	if p.Output != "out/pypi.json" || p.Input != "data/input/pypicache.json" {
		t.Errorf("pypicache paths = %+v, want output overridden and input kept", p)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "config.yml", "strict: true\ncache:\n  dir: /tmp/pkgnorm\n")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if !cfg.Strict || cfg.Cache.Dir != "/tmp/pkgnorm" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.noExtra() {
		t.Error("unset no_extra should keep the default")
	}
}

func TestLoadConfigEmptyYAML(t *testing.T) {
	if _, err := loadConfig(writeConfig(t, "empty.yaml", "")); err != nil {
		t.Errorf("empty yaml should load: %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown toml key", "c.toml", "colour = \"blue\"\n"},
		{"unknown yaml key", "c.yaml", "colour: blue\n"},
		{"bad toml", "c.toml", "timezone = \n"},
		{"bad ttl", "c.toml", "[cache]\nttl = \"a week\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.file, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("loadConfig error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("loadConfig error = %v, want FILE_NOT_FOUND", err)
	}
}

func writeAt(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
