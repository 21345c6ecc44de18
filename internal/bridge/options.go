package bridge

import (
	"io"
	"os"

	"github.com/openpath-labs/openpath-bridge/internal/adapters/logfile"
	"github.com/openpath-labs/openpath-bridge/internal/adapters/proc"
	"github.com/openpath-labs/openpath-bridge/internal/ports"
)

// Option configures optional behavior of a Bridge.
type Option func(*options)

type options struct {
	in       io.Reader
	out      io.Writer
	runner   ports.CommandRunner
	sink     ports.Sink
	hostname func() (string, error)
}

func defaultOptions(cfg Config) options {
	var sink ports.Sink = ports.NopSink{}
	if cfg.LogPath != "" {
		sink = logfile.New(cfg.LogPath, cfg.LogMaxBytes)
	}
	return options{
		in:     os.Stdin,
		out:    os.Stdout,
		runner: proc.NewRunner(),
		sink:   sink,
	}
}

// WithStreams replaces the stdin/stdout pair the bridge serves.
func WithStreams(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		o.in = in
		o.out = out
	}
}

// WithRunner replaces the subprocess executor.
func WithRunner(runner ports.CommandRunner) Option {
	return func(o *options) {
		o.runner = runner
	}
}

// WithSink replaces the debug log sink.
func WithSink(sink ports.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithHostname replaces the hostname lookup used by the get-hostname
// action.
func WithHostname(fn func() (string, error)) Option {
	return func(o *options) {
		o.hostname = fn
	}
}
