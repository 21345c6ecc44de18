// Package codec implements the Native Messaging frame format: a 4-byte
// native-endian length prefix followed by that many bytes of UTF-8 JSON.
//
// The byte order matches the host CPU because the browser writes the
// prefix in its own native order; this is not a network protocol.
package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxPayloadBytes caps the declared length of an inbound frame. The
// browser enforces the same 1 MiB limit on host-bound messages, so any
// frame claiming more than this is garbage or an attack.
const MaxPayloadBytes = 1 << 20

// ReadFrame reads one frame and returns its raw JSON payload.
//
// A closed or truncated stream is reported as io.EOF. A frame declaring
// more than MaxPayloadBytes is also reported as io.EOF: the connection
// is considered aborted and the peer is not told why. The payload is
// returned undecoded; JSON validity is the caller's concern.
func ReadFrame(r io.Reader) (json.RawMessage, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, io.EOF
	}
	length := binary.NativeEndian.Uint32(prefix[:])
	if length > MaxPayloadBytes {
		return nil, io.EOF
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, io.EOF
	}
	return payload, nil
}

// WriteFrame JSON-encodes v and writes it as a single frame.
func WriteFrame(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return WriteRawFrame(w, payload)
}

// WriteRawFrame writes an already-encoded JSON payload as a single
// frame. If w is buffered it is flushed so the peer observes the frame
// without additional delay. No size limit applies on the write side.
func WriteRawFrame(w io.Writer, payload []byte) error {
	var prefix [4]byte
	binary.NativeEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("write frame prefix: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush frame: %w", err)
		}
	}
	return nil
}
