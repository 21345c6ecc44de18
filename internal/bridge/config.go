package bridge

import "time"

// Default external collaborator locations, matching the system
// installation layout.
const (
	DefaultWhitelistCmd = "/usr/local/bin/whitelist"
	DefaultUpdateScript = "/usr/local/bin/openpath-update.sh"
)

// Config controls the bridge's external collaborators. It is resolved
// once at startup and threaded into the dispatcher and sink by value;
// nothing here is mutated while the loop runs.
type Config struct {
	// WhitelistCmd is the whitelist CLI invoked for the check, list and
	// status actions.
	WhitelistCmd string

	// UpdateScript is the update script path. Its existence is checked
	// before every update-whitelist invocation.
	UpdateScript string

	// CheckTimeout bounds each whitelist CLI invocation.
	CheckTimeout time.Duration

	// UpdateTimeout bounds the update script invocation.
	UpdateTimeout time.Duration

	// MaxDomains caps how many domains a single check request may
	// carry; entries past the cap are ignored in input order.
	MaxDomains int

	// LogPath is the debug log artifact; empty disables it.
	LogPath string

	// LogMaxBytes is the debug log rotation threshold.
	LogMaxBytes int64
}

// DefaultConfig returns a Config with the stock collaborator paths and
// the protocol's standard timeouts.
func DefaultConfig() Config {
	return Config{
		WhitelistCmd:  DefaultWhitelistCmd,
		UpdateScript:  DefaultUpdateScript,
		CheckTimeout:  10 * time.Second,
		UpdateTimeout: 60 * time.Second,
		MaxDomains:    50,
		LogMaxBytes:   5 << 20,
	}
}
