package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make
// TOML friendly.
type FileConfig struct {
	WhitelistCmd  string `toml:"whitelist_cmd"`
	UpdateScript  string `toml:"update_script"`
	CheckTimeout  string `toml:"check_timeout"`
	UpdateTimeout string `toml:"update_timeout"`
	MaxDomains    int    `toml:"max_domains"`
	LogPath       string `toml:"log_path"`
	LogMaxBytes   int64  `toml:"log_max_bytes"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.openpath/config.toml, or "" when the home directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".openpath", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config
// struct. It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("whitelist-cmd", fc.WhitelistCmd, &cfg.WhitelistCmd)
	s.setString("update-script", fc.UpdateScript, &cfg.UpdateScript)
	s.setString("log-path", fc.LogPath, &cfg.LogPath)

	if err := s.setDuration("check-timeout", fc.CheckTimeout, &cfg.CheckTimeout); err != nil {
		return err
	}
	if err := s.setDuration("update-timeout", fc.UpdateTimeout, &cfg.UpdateTimeout); err != nil {
		return err
	}

	s.setInt("max-domains", fc.MaxDomains, &cfg.MaxDomains)
	s.setInt64("log-max-bytes", fc.LogMaxBytes, &cfg.LogMaxBytes)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
