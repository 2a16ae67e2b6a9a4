package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the tool configuration read from tot.toml.
type Config struct {
	// SpecRoot is the folder scanned for schema files. Relative paths are
	// resolved against the directory holding tot.toml.
	SpecRoot string `toml:"spec_root"`

	// Backend selects the code generation backend (e.g. "rs").
	Backend string `toml:"backend"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFormat is either "text" or "json".
	LogFormat string `toml:"log_format"`

	// Color is one of auto, always, never.
	Color string `toml:"color"`

	// Crate prefixes host function paths in generated code.
	Crate string `toml:"crate"`

	// Calls overrides how generated code reaches individual host functions,
	// keyed by the path used in source (e.g. "a::b::sync_func").
	Calls map[string]CallConfig `toml:"calls"`
}

// CallConfig describes one host function for code generation. By default a
// function is async and fallible and lives under Crate.
type CallConfig struct {
	Path       string `toml:"path"`
	Sync       bool   `toml:"sync"`
	Infallible bool   `toml:"infallible"`
}

// Default returns the configuration used when no tot.toml exists.
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Load reads a tot.toml file, applies defaults and environment overrides.
// An empty path loads only defaults and environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if cfg.SpecRoot != "" && !filepath.IsAbs(cfg.SpecRoot) {
			cfg.SpecRoot = filepath.Join(filepath.Dir(path), cfg.SpecRoot)
		}
	}
	cfg.applyEnv()
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		if path == "" {
			path = "environment"
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Find searches for tot.toml starting from dir and walking up to parent
// directories. Returns an empty string if none is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TOT_SPEC_ROOT"); v != "" {
		c.SpecRoot = v
	}
	if v := os.Getenv("TOT_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("TOT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TOT_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

func (c *Config) setDefaults() {
	if c.SpecRoot == "" {
		c.SpecRoot = "."
	}
	if c.Backend == "" {
		c.Backend = "rs"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Color == "" {
		c.Color = "auto"
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q", c.LogFormat)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q", c.Color)
	}
	for name := range c.Calls {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("calls: empty function path")
		}
	}
	return nil
}
