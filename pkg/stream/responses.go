package stream

import (
	"io"
	"time"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
	"github.com/youssefadel94/github-copilot-proxy/pkg/upstream"
)

// ResponsesEmitter synthesizes the responses-API event sequence the
// upstream never itself produces. The upstream only speaks the chunk
// grammar, so creation, item and part lifecycle events are fabricated here
// around the raw deltas.
//
// Ordering invariants:
//   - response.created precedes everything, before any upstream bytes.
//   - output_item.added and content_part.added fire at most once, on the
//     first non-empty text fragment (FirstChunkSent latch).
//   - every text fragment emits output_text.delta with only the fragment,
//     never the cumulative text.
//   - the closing quartet fires exactly once (CompletionSent latch), on
//     the sentinel or on upstream EOF, whichever comes first.
type ResponsesEmitter struct {
	sw        *sseWriter
	st        *State
	model     string
	createdAt int64
	sessionID string
	usage     UsageTracker
	obs       Observer

	nextOutputIndex int

	// messageIndex is the output index of the assistant message item.
	// It stays -1 until the first text fragment reserves a slot; on a
	// tool-call-only stream Finish reserves one after the call items so
	// the indexes never collide.
	messageIndex int

	// Function-call items opened so far, in open order, for the final
	// output list. Arguments accumulate as fragments arrive.
	callOrder []string
	calls     map[string]*types.OutputItem
	callIndex map[string]int
}

// NewResponsesEmitter creates the responses-grammar emitter for one stream.
// A nil observer disables stream telemetry.
func NewResponsesEmitter(w io.Writer, st *State, model, sessionID string, usage UsageTracker, obs Observer) *ResponsesEmitter {
	if obs == nil {
		obs = NopObserver{}
	}
	return &ResponsesEmitter{
		sw:           newSSEWriter(w),
		st:           st,
		model:        model,
		createdAt:    time.Now().Unix(),
		sessionID:    sessionID,
		usage:        usage,
		obs:          obs,
		messageIndex: -1,
		calls:        make(map[string]*types.OutputItem),
		callIndex:    make(map[string]int),
	}
}

// emit writes one named event and counts it toward stream telemetry.
func (e *ResponsesEmitter) emit(event string, payload map[string]any) error {
	e.obs.RecordEvent("responses", event)
	return e.sw.writeEvent(event, payload)
}

// Start announces the in-progress response before any upstream bytes.
func (e *ResponsesEmitter) Start() error {
	return e.emit(types.EventResponseCreated, map[string]any{
		"type":     types.EventResponseCreated,
		"response": e.responseObject("in_progress", nil),
	})
}

// Delta implements Emitter. Text handling and tool-call handling are
// independent; frames may interleave them arbitrarily.
func (e *ResponsesEmitter) Delta(ev *DeltaEvent) error {
	if ev.Text != "" {
		if err := e.textDelta(ev.Text); err != nil {
			return err
		}
	}

	for _, tc := range ev.ToolCalls {
		if err := e.toolCallDelta(tc); err != nil {
			return err
		}
	}

	return nil
}

// textDelta appends the fragment and emits output_text.delta, opening the
// message item and its text part first if this is the first text.
func (e *ResponsesEmitter) textDelta(text string) error {
	if !e.st.FirstChunkSent {
		e.st.FirstChunkSent = true
		e.messageIndex = e.nextOutputIndex
		e.nextOutputIndex++

		if err := e.emit(types.EventOutputItemAdded, map[string]any{
			"type":         types.EventOutputItemAdded,
			"output_index": e.messageIndex,
			"item": types.OutputItem{
				ID:      e.st.OutputItemID,
				Type:    "message",
				Status:  "in_progress",
				Role:    "assistant",
				Content: []types.ContentPart{},
			},
		}); err != nil {
			return err
		}

		if err := e.emit(types.EventContentPartAdded, map[string]any{
			"type":          types.EventContentPartAdded,
			"item_id":       e.st.OutputItemID,
			"output_index":  e.messageIndex,
			"content_index": 0,
			"part":          types.ContentPart{Type: "output_text", Text: ""},
		}); err != nil {
			return err
		}
	}

	e.st.AccumulatedText += text
	tokens := EstimateTokens(text)
	e.usage.Track(e.sessionID, tokens)
	e.obs.RecordEstimatedTokens(e.model, tokens)

	return e.emit(types.EventOutputTextDelta, map[string]any{
		"type":          types.EventOutputTextDelta,
		"item_id":       e.st.OutputItemID,
		"output_index":  e.messageIndex,
		"content_index": 0,
		"delta":         text,
	})
}

// toolCallDelta opens a function-call item on the first fragment carrying
// an id and name, and forwards later argument fragments as deltas.
func (e *ResponsesEmitter) toolCallDelta(tc ToolCallDelta) error {
	if tc.ID != "" && tc.Name != "" && !e.st.ToolCallsSeen[tc.ID] {
		e.st.ToolCallsSeen[tc.ID] = true

		item := &types.OutputItem{
			ID:        "fc_" + tc.ID,
			Type:      "function_call",
			Status:    "in_progress",
			CallID:    tc.ID,
			Name:      tc.Name,
			Arguments: tc.Arguments,
		}
		index := e.nextOutputIndex
		e.nextOutputIndex++

		e.callOrder = append(e.callOrder, tc.ID)
		e.calls[tc.ID] = item
		e.callIndex[tc.ID] = index

		return e.emit(types.EventOutputItemAdded, map[string]any{
			"type":         types.EventOutputItemAdded,
			"output_index": index,
			"item":         item,
		})
	}

	if tc.Arguments == "" {
		return nil
	}

	// Argument fragment for an already-opened call. Frames after the first
	// usually carry no id; attribute them to the most recently opened call.
	callID := tc.ID
	if callID == "" && len(e.callOrder) > 0 {
		callID = e.callOrder[len(e.callOrder)-1]
	}

	item, ok := e.calls[callID]
	if !ok {
		return nil
	}
	item.Arguments += tc.Arguments

	return e.emit(types.EventFunctionCallArgsDelta, map[string]any{
		"type":         types.EventFunctionCallArgsDelta,
		"item_id":      item.ID,
		"output_index": e.callIndex[callID],
		"delta":        tc.Arguments,
	})
}

// Fault writes one inline structured error event and leaves the stream
// open; a single malformed frame must not abort the whole stream.
func (e *ResponsesEmitter) Fault(err error) error {
	code := types.CodeStreamTransportError
	if _, ok := err.(*upstream.FrameParseError); ok {
		code = types.CodeFrameParseError
		e.obs.RecordFrameParseError()
	}

	return e.emit(types.EventError, map[string]any{
		"type":    types.EventError,
		"code":    code,
		"message": err.Error(),
	})
}

// Finish writes the closing quartet, each event carrying the full
// accumulated text: output_text.done, output_item.done,
// response.completed, response.done. The CompletionSent latch makes the
// sequence exactly-once even when both termination triggers fire.
func (e *ResponsesEmitter) Finish() error {
	if e.st.CompletionSent {
		return nil
	}
	e.st.CompletionSent = true

	// Tool-call-only stream: no text fragment reserved a message slot,
	// so take the next free index rather than colliding with a call item.
	if e.messageIndex < 0 {
		e.messageIndex = e.nextOutputIndex
		e.nextOutputIndex++
	}

	if err := e.emit(types.EventOutputTextDone, map[string]any{
		"type":          types.EventOutputTextDone,
		"item_id":       e.st.OutputItemID,
		"output_index":  e.messageIndex,
		"content_index": 0,
		"text":          e.st.AccumulatedText,
	}); err != nil {
		return err
	}

	messageItem := e.completedMessageItem()
	if err := e.emit(types.EventOutputItemDone, map[string]any{
		"type":         types.EventOutputItemDone,
		"output_index": e.messageIndex,
		"item":         messageItem,
	}); err != nil {
		return err
	}

	output := e.finalOutput(messageItem)
	completed := map[string]any{
		"type":     types.EventResponseCompleted,
		"response": e.responseObject("completed", output),
	}
	if err := e.emit(types.EventResponseCompleted, completed); err != nil {
		return err
	}

	return e.emit(types.EventResponseDone, map[string]any{
		"type":     types.EventResponseDone,
		"response": e.responseObject("completed", output),
	})
}

// completedMessageItem is the assistant message item in completed status,
// carrying the full accumulated text.
func (e *ResponsesEmitter) completedMessageItem() types.OutputItem {
	return types.OutputItem{
		ID:     e.st.OutputItemID,
		Type:   "message",
		Status: "completed",
		Role:   "assistant",
		Content: []types.ContentPart{
			{Type: "output_text", Text: e.st.AccumulatedText},
		},
	}
}

// finalOutput arranges items in output_index order: the message leads when
// text arrived first, otherwise the function calls come first.
func (e *ResponsesEmitter) finalOutput(messageItem types.OutputItem) []types.OutputItem {
	var output []types.OutputItem
	if e.st.FirstChunkSent {
		output = append(output, messageItem)
	}
	for _, id := range e.callOrder {
		item := *e.calls[id]
		item.Status = "completed"
		output = append(output, item)
	}
	if !e.st.FirstChunkSent {
		output = append(output, messageItem)
	}
	return output
}

// responseObject builds the top-level response envelope.
func (e *ResponsesEmitter) responseObject(status string, output []types.OutputItem) types.ResponseObject {
	obj := types.ResponseObject{
		ID:        e.st.ResponseID,
		Object:    "response",
		CreatedAt: e.createdAt,
		Status:    status,
		Model:     e.model,
		Output:    output,
	}
	if output == nil {
		obj.Output = []types.OutputItem{}
	}
	if status == "completed" {
		tokens := EstimateTokens(e.st.AccumulatedText)
		obj.Usage = &types.ResponseUsage{
			OutputTokens: tokens,
			TotalTokens:  tokens,
		}
	}
	return obj
}
