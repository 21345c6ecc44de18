// Package ports defines the interfaces that connect the bridge core to
// infrastructure adapters.
//
// The dispatcher and message loop (internal/bridge) depend only on
// these interfaces. Concrete implementations live under
// internal/adapters (os/exec for subprocess execution, a rotating text
// file for the debug log). This keeps the core testable with fakes and
// keeps the dependency direction pointing inward.
package ports
