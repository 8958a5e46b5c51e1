// Package config loads reader run configuration from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is a reader run configuration.
type Config struct {
	Root     string  `yaml:"root" toml:"root"`
	FileList string  `yaml:"file_list" toml:"file_list"`
	Pattern  string  `yaml:"pattern" toml:"pattern"`
	Read     Read    `yaml:"read" toml:"read"`
	Slab     Slab    `yaml:"slab" toml:"slab"`
	Shard    Shard   `yaml:"shard" toml:"shard"`
	Cache    Cache   `yaml:"cache" toml:"cache"`
	Logging  Logging `yaml:"logging" toml:"logging"`
	Metrics  Metrics `yaml:"metrics" toml:"metrics"`
}

// Read selects how payloads are read.
type Read struct {
	CopyMode  bool `yaml:"copy_mode" toml:"copy_mode"`
	Mmap      bool `yaml:"mmap" toml:"mmap"`
	ReadAhead int  `yaml:"read_ahead" toml:"read_ahead"`
}

// Slab restricts reads to a box in logical order. Empty means whole samples.
type Slab struct {
	Anchor []int64 `yaml:"anchor,omitempty" toml:"anchor,omitempty"`
	Extent []int64 `yaml:"extent,omitempty" toml:"extent,omitempty"`
}

// Shard selects a contiguous partition of the sample list.
type Shard struct {
	ID          int    `yaml:"id" toml:"id"`
	Count       int    `yaml:"count" toml:"count"`
	ShuffleSeed *int64 `yaml:"shuffle_seed,omitempty" toml:"shuffle_seed,omitempty"`
}

// Cache points at the on-disk cached-sample index.
type Cache struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// Logging contains logging configuration
type Logging struct {
	Level       string `yaml:"level" toml:"level"`
	Development bool   `yaml:"development" toml:"development"`
}

// Metrics configures the prometheus endpoint. An empty address disables it.
type Metrics struct {
	Addr string `yaml:"addr" toml:"addr"`
	Path string `yaml:"path" toml:"path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Root:    ".",
		Pattern: "*.npy",
		Read: Read{
			CopyMode:  true,
			ReadAhead: 64 << 10,
		},
		Shard: Shard{
			Count: 1,
		},
		Logging: Logging{
			Level: "info",
		},
		Metrics: Metrics{
			Path: "/metrics",
		},
	}
}

// Load reads path over the defaults. Files ending in .toml are decoded as
// TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	cfg := Default()
	if isTOML(path) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path in the format its extension selects.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = []byte(sb.String())
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o600)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// maxDims mirrors the deepest array the header parser accepts.
const maxDims = 7

// Validate checks the configuration for values no reader could use.
func (c *Config) Validate() error {
	var errs []error
	if c.Root == "" {
		errs = append(errs, errors.New("root is required"))
	}
	if c.Read.ReadAhead < 0 {
		errs = append(errs, fmt.Errorf("read_ahead must not be negative, got %d", c.Read.ReadAhead))
	}
	if a, e := len(c.Slab.Anchor), len(c.Slab.Extent); a != e {
		errs = append(errs, fmt.Errorf("slab anchor has %d dims but extent has %d", a, e))
	} else if a > maxDims {
		errs = append(errs, fmt.Errorf("slab has %d dims, at most %d are supported", a, maxDims))
	}
	for i, v := range c.Slab.Anchor {
		if v < 0 {
			errs = append(errs, fmt.Errorf("slab anchor[%d] is negative", i))
		}
	}
	for i, v := range c.Slab.Extent {
		if v < 0 {
			errs = append(errs, fmt.Errorf("slab extent[%d] is negative", i))
		}
	}
	if c.Shard.Count < 1 {
		errs = append(errs, fmt.Errorf("shard count must be at least 1, got %d", c.Shard.Count))
	} else if c.Shard.ID < 0 || c.Shard.ID >= c.Shard.Count {
		errs = append(errs, fmt.Errorf("shard id %d out of range [0, %d)", c.Shard.ID, c.Shard.Count))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}
