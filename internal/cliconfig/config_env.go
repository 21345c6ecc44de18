package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (OPENPATH_*). It respects flags that have been explicitly set
// (changed map). Returns an error if any environment variable has an
// invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("whitelist-cmd", os.Getenv("OPENPATH_WHITELIST_CMD"), &cfg.WhitelistCmd)
	s.setString("update-script", os.Getenv("OPENPATH_UPDATE_SCRIPT"), &cfg.UpdateScript)
	s.setString("log-path", os.Getenv("OPENPATH_LOG_PATH"), &cfg.LogPath)

	if err := s.setDuration("check-timeout", os.Getenv("OPENPATH_CHECK_TIMEOUT"), &cfg.CheckTimeout); err != nil {
		return err
	}
	if err := s.setDuration("update-timeout", os.Getenv("OPENPATH_UPDATE_TIMEOUT"), &cfg.UpdateTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("max-domains", os.Getenv("OPENPATH_MAX_DOMAINS"), &cfg.MaxDomains); err != nil {
		return err
	}
	if err := s.setInt64FromString("log-max-bytes", os.Getenv("OPENPATH_LOG_MAX_BYTES"), &cfg.LogMaxBytes); err != nil {
		return err
	}

	return nil
}
