// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/keyhook/lib/keymap"
)

// EnvironmentVariable names the config file when --config is not given.
const EnvironmentVariable = "KEYHOOK_CONFIG"

// Config is the master configuration for keyhook.
type Config struct {
	// Session tunes the relay loop.
	Session SessionConfig `yaml:"session"`

	// Log configures the session log.
	Log LogConfig `yaml:"log"`

	// Keymap supplies remap rules in addition to those given with -k.
	Keymap KeymapConfig `yaml:"keymap"`
}

// SessionConfig tunes the relay loop.
type SessionConfig struct {
	// PollInterval bounds how long the relay waits for I/O before
	// checking whether the worker has exited.
	// Default: 100ms
	PollInterval time.Duration `yaml:"poll_interval"`

	// BufferSize is the largest chunk relayed in one read.
	// Default: 16384
	BufferSize int `yaml:"buffer_size"`
}

// LogConfig configures the session log. While a session runs the
// terminal belongs to the worker, so the log can only go to a file.
type LogConfig struct {
	// File is where session events are written. Empty discards them.
	File string `yaml:"file"`

	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: json
	Format string `yaml:"format"`
}

// KeymapConfig lists remap rules.
type KeymapConfig struct {
	// Rules are inline rules.
	Rules []keymap.RuleSpec `yaml:"rules"`

	// Files are rule files (YAML or JSONC) loaded after Rules.
	Files []string `yaml:"files"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			PollInterval: 100 * time.Millisecond,
			BufferSize:   16 * 1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Resolve loads the configuration from path if it is non-empty, else
// from the file named by KEYHOOK_CONFIG if that is set, else returns
// [Default].
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvironmentVariable)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, on top of
// [Default], and validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	c.Log.File = expandVars(c.Log.File)
	for index, file := range c.Keymap.Files {
		c.Keymap.Files[index] = expandVars(file)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns from the
// environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Session.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("session.poll_interval must be positive, got %s", c.Session.PollInterval))
	}
	if c.Session.BufferSize < 1 || c.Session.BufferSize > 1<<20 {
		errs = append(errs, fmt.Errorf("session.buffer_size must be between 1 and 1048576, got %d", c.Session.BufferSize))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	for index, spec := range c.Keymap.Rules {
		if _, err := spec.Rule(); err != nil {
			errs = append(errs, fmt.Errorf("keymap.rules[%d]: %w", index, err))
		}
	}
	for index, file := range c.Keymap.Files {
		if file == "" {
			errs = append(errs, fmt.Errorf("keymap.files[%d] is empty", index))
		}
	}

	return errors.Join(errs...)
}

// LoadRules returns the configured rules: inline rules first, then the
// rules of each file in order. Later rules override earlier ones with
// the same input pattern when the map is built.
func (c *Config) LoadRules() ([]keymap.Rule, error) {
	rules, err := keymap.DecodeSpecs(c.Keymap.Rules)
	if err != nil {
		return nil, fmt.Errorf("keymap.rules: %w", err)
	}
	for _, file := range c.Keymap.Files {
		fileRules, err := keymap.LoadFile(file)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	return rules, nil
}
