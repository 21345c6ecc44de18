// Package proc runs external commands with a bounded lifetime,
// capturing their output for the bridge to interpret.
package proc

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/openpath-labs/openpath-bridge/internal/ports"
)

// Runner implements ports.CommandRunner on top of os/exec.
type Runner struct{}

// NewRunner creates a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes name with args and waits for completion or the timeout,
// whichever comes first. On timeout the child is killed and
// ports.ErrTimedOut is returned. A nonzero exit status is reported in
// the Outcome with a nil error; any other error means the command could
// not be started.
func (Runner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (ports.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := ports.Outcome{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return ports.Outcome{}, ports.ErrTimedOut
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return ports.Outcome{}, err
}
