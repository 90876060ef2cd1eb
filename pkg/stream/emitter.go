package stream

// Emitter is one of the two swappable event-synthesis strategies. The
// pipeline owns frame consumption and calls the emitter strictly in frame
// arrival order.
type Emitter interface {
	// Start runs before any upstream bytes arrive. The responses emitter
	// uses it to announce the in-progress response.
	Start() error

	// Delta handles one decoded upstream frame.
	Delta(ev *DeltaEvent) error

	// Fault writes an inline structured error event to the already-open
	// stream. The pipeline continues after a frame-level fault and stops
	// after a transport-level one; the emitter does not need to know which.
	Fault(err error) error

	// Finish writes the closing sequence. Both termination triggers call
	// it; implementations must make it exactly-once.
	Finish() error
}
