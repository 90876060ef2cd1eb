package stream

import (
	"errors"
	"io"
	"time"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
	"github.com/youssefadel94/github-copilot-proxy/pkg/upstream"
)

// ChunkEmitter reproduces the chat.completion.chunk grammar: each upstream
// delta is re-wrapped into an outbound chunk with this stream's id, and the
// literal [DONE] marker is forwarded exactly once at the end.
//
// The delta passes through unmodified in shape; no state accumulates here
// beyond what usage accounting needs.
type ChunkEmitter struct {
	sw        *sseWriter
	st        *State
	model     string
	created   int64
	sessionID string
	usage     UsageTracker
	obs       Observer
	roleSent  bool
}

// NewChunkEmitter creates the chunk-grammar emitter for one stream. A nil
// observer disables stream telemetry.
func NewChunkEmitter(w io.Writer, st *State, model, sessionID string, usage UsageTracker, obs Observer) *ChunkEmitter {
	if obs == nil {
		obs = NopObserver{}
	}
	return &ChunkEmitter{
		sw:        newSSEWriter(w),
		st:        st,
		model:     model,
		created:   time.Now().Unix(),
		sessionID: sessionID,
		usage:     usage,
		obs:       obs,
	}
}

// Start implements Emitter. The chunk grammar has no preamble.
func (e *ChunkEmitter) Start() error {
	return nil
}

// Delta implements Emitter.
func (e *ChunkEmitter) Delta(ev *DeltaEvent) error {
	delta := types.Delta{Content: ev.Text}
	if !e.roleSent {
		delta.Role = "assistant"
		e.roleSent = true
	}

	for _, tc := range ev.ToolCalls {
		out := types.StreamToolCall{Index: tc.Index, ID: tc.ID}
		if tc.ID != "" {
			out.Type = "function"
		}
		if tc.Name != "" || tc.Arguments != "" {
			out.Function = &types.StreamFunctionDelta{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			}
		}
		delta.ToolCalls = append(delta.ToolCalls, out)
	}

	chunk := &types.ChatCompletionStreamChunk{
		ID:      e.st.ResponseID,
		Object:  "chat.completion.chunk",
		Created: e.created,
		Model:   e.model,
		Choices: []types.StreamChoice{{Index: 0, Delta: delta}},
	}
	if ev.FinishReason != "" {
		reason := ev.FinishReason
		chunk.Choices[0].FinishReason = &reason
	}

	if err := e.sw.writeData(chunk); err != nil {
		return err
	}
	e.obs.RecordEvent("chat", "chunk")

	if ev.Text != "" {
		e.st.AccumulatedText += ev.Text
		tokens := EstimateTokens(ev.Text)
		e.usage.Track(e.sessionID, tokens)
		e.obs.RecordEstimatedTokens(e.model, tokens)
	}

	return nil
}

// Fault implements Emitter: one inline error frame on the open stream.
func (e *ChunkEmitter) Fault(err error) error {
	var parseErr *upstream.FrameParseError
	if errors.As(err, &parseErr) {
		e.obs.RecordFrameParseError()
	}
	e.obs.RecordEvent("chat", "error")
	return e.sw.writeData(map[string]any{
		"error": map[string]any{
			"message": err.Error(),
			"type":    types.ErrorTypeServerError,
			"code":    types.CodeFrameParseError,
		},
	})
}

// Finish implements Emitter: the terminal marker, exactly once.
func (e *ChunkEmitter) Finish() error {
	if e.st.CompletionSent {
		return nil
	}
	e.st.CompletionSent = true
	e.obs.RecordEvent("chat", "done")
	return e.sw.writeDone()
}
