// Package bridge implements the Native Messaging host core: the
// request dispatcher and the message loop that services one frame at a
// time over standard input/output.
package bridge

import (
	"context"
	"encoding/json"
	"io"

	"github.com/openpath-labs/openpath-bridge/internal/codec"
	"github.com/openpath-labs/openpath-bridge/internal/ports"
)

// Bridge owns the process lifetime: decode a frame, dispatch it,
// answer with exactly one frame, until the peer closes its end of the
// pipe. The loop is strictly sequential; a request is fully resolved,
// subprocess wait included, before the next frame is read.
type Bridge struct {
	in   io.Reader
	out  io.Writer
	disp *Dispatcher
	sink ports.Sink
}

// New creates a bridge for cfg. By default it serves stdin/stdout,
// executes subprocesses with os/exec and logs to the configured log
// file; options override any of those for testing or embedding.
func New(cfg Config, opts ...Option) *Bridge {
	o := defaultOptions(cfg)
	for _, opt := range opts {
		opt(&o)
	}

	disp := NewDispatcher(cfg, o.runner, o.sink)
	if o.hostname != nil {
		disp.hostname = o.hostname
	}

	return &Bridge{
		in:   o.in,
		out:  o.out,
		disp: disp,
		sink: o.sink,
	}
}

// Run services requests until end-of-stream, then returns nil. The
// rotation check runs once, before the first frame. Framing errors and
// oversized frames terminate the loop silently; every decodable frame
// is answered, malformed payloads included.
func (b *Bridge) Run(ctx context.Context) error {
	b.sink.RotateIfOversized()
	b.sink.Append("native host started")

	for {
		raw, err := codec.ReadFrame(b.in)
		if err != nil {
			b.sink.Append("no message received, exiting")
			return nil
		}
		b.sink.Append("received: " + string(raw))

		resp := b.disp.Dispatch(ctx, raw)

		payload, err := json.Marshal(resp)
		if err != nil {
			// Response types are plain structs; this indicates a
			// programming error. Keep the one-response-per-request
			// contract with a generic failure envelope.
			payload = []byte(`{"success":false,"error":"Internal error"}`)
		}
		if err := codec.WriteRawFrame(b.out, payload); err != nil {
			b.sink.Append("write failed, exiting: " + err.Error())
			return nil
		}
		b.sink.Append("sending: " + string(payload))
	}
}
