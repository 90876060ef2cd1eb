package stream

// State is the per-request mutable record threaded through a synthesizer.
// It is created when a streaming request begins, exclusively owned and
// mutated by that request's goroutine, and discarded when the stream ends.
// It is never shared across requests, so it carries no locks.
type State struct {
	// ResponseID identifies the synthesized response.
	ResponseID string

	// OutputItemID identifies the assistant message item (responses mode).
	OutputItemID string

	// AccumulatedText grows monotonically with every text fragment.
	AccumulatedText string

	// FirstChunkSent latches true when the first non-empty text fragment
	// has been seen. Guards the one-time item/part added events.
	FirstChunkSent bool

	// CompletionSent latches true when the closing sequence has fired.
	// Both termination triggers (sentinel, upstream EOF) check it, which
	// is what makes the closing sequence exactly-once.
	CompletionSent bool

	// ToolCallsSeen tracks tool-call ids already opened on this stream.
	ToolCallsSeen map[string]bool

	// ChunkCount counts frames processed, for logging.
	ChunkCount int
}

// NewState creates stream state for one request.
func NewState(responseID, outputItemID string) *State {
	return &State{
		ResponseID:    responseID,
		OutputItemID:  outputItemID,
		ToolCallsSeen: make(map[string]bool),
	}
}
