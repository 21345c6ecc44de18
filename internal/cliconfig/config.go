// Package cliconfig resolves the bridge's configuration from flags,
// environment variables (OPENPATH_*) and an optional TOML file, in
// that order of precedence.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/openpath-labs/openpath-bridge/internal/bridge"
)

// Config holds CLI configuration for the native host.
type Config struct {
	WhitelistCmd string
	UpdateScript string

	CheckTimeout  time.Duration
	UpdateTimeout time.Duration

	MaxDomains int

	LogPath     string
	LogMaxBytes int64
}

// DefaultConfig returns a Config with default values. LogPath is left
// empty and resolved during Validate so an explicit flag, env var or
// file value wins over the data-directory lookup.
func DefaultConfig() Config {
	return Config{
		WhitelistCmd:  bridge.DefaultWhitelistCmd,
		UpdateScript:  bridge.DefaultUpdateScript,
		CheckTimeout:  10 * time.Second,
		UpdateTimeout: 60 * time.Second,
		MaxDomains:    50,
		LogMaxBytes:   5 << 20,
	}
}

// Validate checks the configuration for errors and sets derived
// defaults, resolving the log path when none was given.
func (c *Config) Validate() error {
	if c.WhitelistCmd == "" {
		return fmt.Errorf("whitelist-cmd is required")
	}
	if c.CheckTimeout <= 0 {
		return fmt.Errorf("check timeout must be positive")
	}
	if c.UpdateTimeout <= 0 {
		return fmt.Errorf("update timeout must be positive")
	}
	if c.MaxDomains <= 0 {
		return fmt.Errorf("max domains must be positive")
	}
	if c.LogMaxBytes <= 0 {
		return fmt.Errorf("log max bytes must be positive")
	}
	if c.LogPath == "" {
		c.LogPath = ResolveLogPath()
	}
	return nil
}

// Bridge converts the CLI configuration into the bridge core's Config.
func (c Config) Bridge() bridge.Config {
	return bridge.Config{
		WhitelistCmd:  c.WhitelistCmd,
		UpdateScript:  c.UpdateScript,
		CheckTimeout:  c.CheckTimeout,
		UpdateTimeout: c.UpdateTimeout,
		MaxDomains:    c.MaxDomains,
		LogPath:       c.LogPath,
		LogMaxBytes:   c.LogMaxBytes,
	}
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 value if positive and flag not changed.
func (s *configSetter) setInt64(flag string, value int64, dst *int64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag
// not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if
// valid. Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination
// if valid. Used for environment variables that come as strings.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
