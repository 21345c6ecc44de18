package ports

// Sink records protocol debug lines as a side channel of the message
// loop. Implementations must be best-effort: Append swallows every
// failure, because logging must never interrupt protocol service.
type Sink interface {
	// Append records one timestamped line, in receipt order.
	Append(message string)

	// RotateIfOversized rolls the log artifact once it has outgrown its
	// size budget. Called once per process startup, not per message.
	RotateIfOversized()
}

// NopSink discards everything. Useful as a default when no log path is
// configured.
type NopSink struct{}

// Append discards the message.
func (NopSink) Append(string) {}

// RotateIfOversized does nothing.
func (NopSink) RotateIfOversized() {}
