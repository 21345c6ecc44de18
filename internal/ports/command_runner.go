package ports

import (
	"context"
	"errors"
	"time"
)

// Outcome captures everything a finished subprocess left behind.
// Stdout and stderr are collected separately as text; callers that need
// structure parse the free-form stdout themselves.
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ErrTimedOut reports that the child exceeded its deadline and was
// killed. The caller treats this as "no information available" for the
// request, not as a crash.
var ErrTimedOut = errors.New("command timed out")

// CommandRunner executes an external command with a bounded lifetime.
//
// A nonzero exit status is not an error: it comes back in the Outcome
// for the caller to interpret. The returned error is ErrTimedOut when
// the deadline expired, or the launch failure when the command could
// not be started at all. Args are passed as literal strings, never
// shell-interpreted.
type CommandRunner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Outcome, error)
}
