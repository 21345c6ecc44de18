// Package logfile appends protocol debug lines to a rotating text
// file, implementing ports.Sink.
package logfile

import (
	"fmt"
	"os"
	"time"
)

// DefaultMaxBytes is the rotation threshold when none is configured.
const DefaultMaxBytes = 5 << 20

// BackupSuffix is appended to the log path to name the single backup
// generation kept by rotation.
const BackupSuffix = ".old"

// Sink appends timestamped lines to a plain text file. The file is
// opened and closed per write; no handle is held across calls. Every
// failure is swallowed: logging never interrupts protocol service.
type Sink struct {
	path     string
	maxBytes int64
}

// New creates a Sink writing to path. maxBytes is the rotation
// threshold; values <= 0 fall back to DefaultMaxBytes.
func New(path string, maxBytes int64) *Sink {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Sink{path: path, maxBytes: maxBytes}
}

// Append writes "[timestamp] message" to the log file, creating it if
// needed. Errors are discarded.
func (s *Sink) Append(message string) {
	if s == nil || s.path == "" {
		return
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), message)
}

// RotateIfOversized renames the current file to its backup name once it
// has grown past the threshold, deleting any previous backup first. A
// fresh log file begins accumulating on the next Append. Errors are
// discarded.
func (s *Sink) RotateIfOversized() {
	if s == nil || s.path == "" {
		return
	}
	st, err := os.Stat(s.path)
	if err != nil || st.Size() <= s.maxBytes {
		return
	}
	backup := s.path + BackupSuffix
	_ = os.Remove(backup)
	_ = os.Rename(s.path, backup)
}

// Path returns the log file location.
func (s *Sink) Path() string {
	return s.path
}
