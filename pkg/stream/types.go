package stream

import "encoding/json"

// DeltaEvent is the neutral decoded form of one upstream content frame.
// Both emitter strategies consume this; neither re-parses upstream JSON.
type DeltaEvent struct {
	// Text is the incremental text fragment (may be empty).
	Text string

	// ToolCalls are incremental tool-call fragments within this frame.
	ToolCalls []ToolCallDelta

	// FinishReason is set on the frame that closes a choice.
	FinishReason string
}

// ToolCallDelta is one incremental tool-call fragment. The first fragment
// for a call carries ID and Name; later fragments carry only an Arguments
// piece for the already-opened call.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Upstream chunk wire shapes (decode only).

type chunkPayload struct {
	ID      string        `json:"id"`
	Choices []chunkChoice `json:"choices"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason"`
}

type chunkDelta struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	ToolCalls []chunkToolCall `json:"tool_calls"`
}

type chunkToolCall struct {
	Index    int                `json:"index"`
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function chunkFunctionDelta `json:"function"`
}

type chunkFunctionDelta struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// decodeFrame parses an upstream frame payload into a neutral delta event.
// Only the first choice is considered; the upstream is called with n=1.
func decodeFrame(data []byte) (*DeltaEvent, error) {
	var payload chunkPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	ev := &DeltaEvent{}
	if len(payload.Choices) == 0 {
		return ev, nil
	}

	choice := payload.Choices[0]
	ev.Text = choice.Delta.Content
	ev.FinishReason = choice.FinishReason

	for _, tc := range choice.Delta.ToolCalls {
		ev.ToolCalls = append(ev.ToolCalls, ToolCallDelta{
			Index:     tc.Index,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return ev, nil
}

// EstimateTokens is the length/4 character heuristic used for per-fragment
// usage accounting.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// UsageTracker receives per-fragment token estimates. Implementations must
// be safe for concurrent use; many pipelines report into one tracker.
type UsageTracker interface {
	Track(sessionID string, tokens int)
}

// NopTracker discards usage. Useful in tests.
type NopTracker struct{}

// Track implements UsageTracker.
func (NopTracker) Track(string, int) {}

// Observer receives stream-level telemetry from the emitters: one event per
// emitted frame, the per-fragment token estimates, and every malformed
// upstream frame. telemetry/metrics.StreamMetrics satisfies it.
type Observer interface {
	RecordEvent(dialect, event string)
	RecordEstimatedTokens(model string, tokens int)
	RecordFrameParseError()
}

// NopObserver discards stream telemetry.
type NopObserver struct{}

// RecordEvent implements Observer.
func (NopObserver) RecordEvent(string, string) {}

// RecordEstimatedTokens implements Observer.
func (NopObserver) RecordEstimatedTokens(string, int) {}

// RecordFrameParseError implements Observer.
func (NopObserver) RecordFrameParseError() {}
