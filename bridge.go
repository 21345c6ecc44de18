// Package openpathbridge provides a Native Messaging host that bridges
// a browser extension to the local domain-whitelist tooling.
//
// The browser launches the host and exchanges length-prefixed JSON
// frames over stdin/stdout; each request becomes an invocation of the
// external whitelist CLI or update script.
//
// Example usage:
//
//	cfg := openpathbridge.DefaultConfig()
//	cfg.WhitelistCmd = "/opt/openpath/bin/whitelist"
//	if err := openpathbridge.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package openpathbridge

import (
	"context"

	"github.com/openpath-labs/openpath-bridge/internal/bridge"
)

// Config holds the configuration for the native messaging host.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = bridge.Config

// Run serves the native messaging protocol on stdin/stdout until the
// peer closes the stream. It blocks for the lifetime of the session
// and returns nil on a clean end-of-stream.
func Run(ctx context.Context, cfg Config) error {
	return bridge.New(cfg).Run(ctx)
}

// DefaultConfig returns a Config with the stock collaborator paths and
// the protocol's standard timeouts.
func DefaultConfig() Config {
	return bridge.DefaultConfig()
}
