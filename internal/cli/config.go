package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pkgnorm/pkg/cache"
	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/pipeline"
	"github.com/matzehuels/pkgnorm/pkg/store"
)

// =============================================================================
// Config File
// =============================================================================

// Config mirrors the config file. Command-line flags override every field.
type Config struct {
	Timezone   string                `toml:"timezone" yaml:"timezone"`
	NoExtra    *bool                 `toml:"no_extra" yaml:"no_extra"`
	Strict     bool                  `toml:"strict" yaml:"strict"`
	IncludeDev bool                  `toml:"include_dev" yaml:"include_dev"`
	Cache      CacheConfig           `toml:"cache" yaml:"cache"`
	Store      StoreConfig           `toml:"store" yaml:"store"`
	Paths      map[string]PathConfig `toml:"paths" yaml:"paths"`
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Dir      string `toml:"dir" yaml:"dir"`
	RedisURL string `toml:"redis_url" yaml:"redis_url"`
	TTL      string `toml:"ttl" yaml:"ttl"` // Go duration, e.g. "24h"
}

// StoreConfig configures the optional MongoDB sink.
type StoreConfig struct {
	MongoURI   string `toml:"mongo_uri" yaml:"mongo_uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
}

// PathConfig holds the default input and output files of one source.
type PathConfig struct {
	Input  string `toml:"input" yaml:"input"`
	Output string `toml:"output" yaml:"output"`
}

// defaultConfig returns the built-in defaults. The paths match the layout of
// the data directory the tool was first written for.
func defaultConfig() *Config {
	noExtra := true
	return &Config{
		Timezone: pipeline.DefaultTimezone,
		NoExtra:  &noExtra,
		Store: StoreConfig{
			Database:   store.DefaultDatabase,
			Collection: store.DefaultCollection,
		},
		Paths: map[string]PathConfig{
			"bigquery": {
				Input:  "data/input/bq_results.json",
				Output: "data/output/pypi-bq-dependencies420k-latest.json",
			},
			"pypicache": {
				Input:  "data/input/pypicache.json",
				Output: "data/output/pypi-repology-dependencies.json",
			},
			"npm": {
				Input:  "data/input/npm.json",
				Output: "data/output/npm-dependencies.json",
			},
		},
	}
}

// loadConfig reads path on top of the defaults. An empty path means the
// default location, which may be missing; an explicit path must exist.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	var file Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		md, err := toml.Decode(string(data), &file)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
		}
	}

	cfg.merge(&file)
	if _, err := cfg.cacheTTL(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies the fields set in other onto c.
func (c *Config) merge(other *Config) {
	if other.Timezone != "" {
		c.Timezone = other.Timezone
	}
	if other.NoExtra != nil {
		c.NoExtra = other.NoExtra
	}
	c.Strict = c.Strict || other.Strict
	c.IncludeDev = c.IncludeDev || other.IncludeDev

	if other.Cache.Dir != "" {
		c.Cache.Dir = other.Cache.Dir
	}
	if other.Cache.RedisURL != "" {
		c.Cache.RedisURL = other.Cache.RedisURL
	}
	if other.Cache.TTL != "" {
		c.Cache.TTL = other.Cache.TTL
	}

	if other.Store.MongoURI != "" {
		c.Store.MongoURI = other.Store.MongoURI
	}
	if other.Store.Database != "" {
		c.Store.Database = other.Store.Database
	}
	if other.Store.Collection != "" {
		c.Store.Collection = other.Store.Collection
	}

	for name, p := range other.Paths {
		cur := c.Paths[name]
		if p.Input != "" {
			cur.Input = p.Input
		}
		if p.Output != "" {
			cur.Output = p.Output
		}
		c.Paths[name] = cur
	}
}

// noExtra reports the configured extras filter, defaulting to true.
func (c *Config) noExtra() bool {
	return c.NoExtra == nil || *c.NoExtra
}

// cacheTTL parses the configured TTL, defaulting to cache.DefaultTTL.
func (c *Config) cacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return cache.DefaultTTL, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "invalid cache ttl %q", c.Cache.TTL)
	}
	return d, nil
}

// configPath returns the default config file location
// ($XDG_CONFIG_HOME/pkgnorm/config.toml or ~/.config/pkgnorm/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
