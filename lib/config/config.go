// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the rolewarden
// daemon.
//
// Configuration is loaded from a single YAML file specified by:
//   - ROLEWARDEN_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. Environment variables
// do not override file values. This ensures deterministic, auditable
// configuration with no hidden overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rolewarden/rolewarden/lib/ref"
	"gopkg.in/yaml.v3"
)

// Granularity values for enforcement.granularity.
const (
	GranularityMember     = "member"
	GranularityMemberRole = "member-role"
)

// Config is the daemon configuration.
type Config struct {
	// Gateway configures the platform gateway connection.
	Gateway GatewayConfig `yaml:"gateway"`

	// Rules configures the rule document source.
	Rules RulesConfig `yaml:"rules"`

	// Guilds lists the guild IDs the daemon enforces. At least one is
	// required.
	Guilds []string `yaml:"guilds"`

	// Enforcement configures the evaluation pipeline.
	Enforcement EnforcementConfig `yaml:"enforcement"`

	// LogLevel sets the slog level: debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
}

// GatewayConfig configures the platform gateway connection.
type GatewayConfig struct {
	// URL is the gateway API base URL.
	URL string `yaml:"url"`

	// TokenPath is the file holding the bearer token, or "-" to read
	// it from stdin at startup.
	TokenPath string `yaml:"token_path"`
}

// RulesConfig configures the rule document source.
type RulesConfig struct {
	// Directory holds one <guild>.jsonc rule document per guild.
	Directory string `yaml:"directory"`

	// ReloadDebounce is the quiet period after a rule file change
	// before the document is re-read, as a Go duration string.
	// Default: 2s
	ReloadDebounce string `yaml:"reload_debounce"`
}

// EnforcementConfig configures the evaluation pipeline.
type EnforcementConfig struct {
	// Granularity selects the debounce key: "member" gates all
	// evaluation per member, "member-role" gates each role
	// individually. Default: member
	Granularity string `yaml:"granularity"`

	// DebounceWindow is the membership-event cooldown as a Go
	// duration string. Empty selects the granularity's default
	// (1500ms for member, 5s for member-role).
	DebounceWindow string `yaml:"debounce_window"`

	// Pause is the minimum interval between revocation calls, as a
	// Go duration string. Default: 20ms (≈50 calls/s).
	Pause string `yaml:"pause"`
}

// Default returns the default configuration. The defaults give every
// optional field a sensible value; gateway.url, gateway.token_path,
// rules.directory, and guilds have no defaults and must come from the
// file.
func Default() *Config {
	return &Config{
		Rules: RulesConfig{
			ReloadDebounce: "2s",
		},
		Enforcement: EnforcementConfig{
			Granularity: GranularityMember,
			Pause:       "20ms",
		},
		LogLevel: "info",
	}
}

// Load loads configuration from the ROLEWARDEN_CONFIG environment
// variable. There are no fallbacks: if the variable is not set, this
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv("ROLEWARDEN_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("ROLEWARDEN_CONFIG environment variable not set; " +
			"set it to the path of your rolewarden.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merged over
// Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Gateway.URL == "" {
		errs = append(errs, fmt.Errorf("gateway.url is required"))
	}
	if c.Gateway.TokenPath == "" {
		errs = append(errs, fmt.Errorf("gateway.token_path is required"))
	}
	if c.Rules.Directory == "" {
		errs = append(errs, fmt.Errorf("rules.directory is required"))
	}
	if len(c.Guilds) == 0 {
		errs = append(errs, fmt.Errorf("guilds must list at least one guild ID"))
	}
	for _, raw := range c.Guilds {
		if _, err := ref.ParseGuildID(raw); err != nil {
			errs = append(errs, fmt.Errorf("guilds entry %q: %w", raw, err))
		}
	}

	if c.Enforcement.Granularity != GranularityMember && c.Enforcement.Granularity != GranularityMemberRole {
		errs = append(errs, fmt.Errorf("enforcement.granularity must be %q or %q",
			GranularityMember, GranularityMemberRole))
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"rules.reload_debounce", c.Rules.ReloadDebounce},
		{"enforcement.debounce_window", c.Enforcement.DebounceWindow},
		{"enforcement.pause", c.Enforcement.Pause},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field.name, err))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn, or error (got %q)", c.LogLevel))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// GuildIDs returns the configured guilds as parsed IDs. Call Validate
// first; parse failures here mean an unvalidated config.
func (c *Config) GuildIDs() ([]ref.GuildID, error) {
	guilds := make([]ref.GuildID, 0, len(c.Guilds))
	for _, raw := range c.Guilds {
		guild, err := ref.ParseGuildID(raw)
		if err != nil {
			return nil, fmt.Errorf("guilds entry %q: %w", raw, err)
		}
		guilds = append(guilds, guild)
	}
	return guilds, nil
}

// Duration parses a duration field, returning fallback for the empty
// string. Fields are validated by Validate; a parse failure here
// returns the fallback.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
