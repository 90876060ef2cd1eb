package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
)

type trackedUsage struct {
	total int
}

func (u *trackedUsage) Track(sessionID string, tokens int) {
	u.total += tokens
}

func textFrame(content string) string {
	return fmt.Sprintf(`data: {"id":"up-1","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`+"\n\n", content)
}

func finishFrame(reason string) string {
	return fmt.Sprintf(`data: {"id":"up-1","choices":[{"index":0,"delta":{},"finish_reason":%q}]}`+"\n\n", reason)
}

func toolCallFrame(index int, id, name, args string) string {
	return fmt.Sprintf(`data: {"id":"up-1","choices":[{"index":0,"delta":{"tool_calls":[{"index":%d,"id":%q,"type":"function","function":{"name":%q,"arguments":%q}}]},"finish_reason":null}]}`+"\n\n",
		index, id, name, args)
}

func runChunks(t *testing.T, body string) (string, *State) {
	t.Helper()
	var buf bytes.Buffer
	st := NewState("chatcmpl-test", "")
	em := NewChunkEmitter(&buf, st, "gpt-4.1", "sess", NopTracker{}, nil)
	if err := Run(context.Background(), strings.NewReader(body), em, st); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return buf.String(), st
}

func runResponses(t *testing.T, body string) (string, *State) {
	t.Helper()
	var buf bytes.Buffer
	st := NewState("resp_test", "msg_test")
	em := NewResponsesEmitter(&buf, st, "gpt-4.1", "sess", NopTracker{}, nil)
	if err := Run(context.Background(), strings.NewReader(body), em, st); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return buf.String(), st
}

func decodeChunks(t *testing.T, out string) []types.ChatCompletionStreamChunk {
	t.Helper()
	var chunks []types.ChatCompletionStreamChunk
	for _, line := range strings.Split(out, "\n") {
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok || payload == "[DONE]" {
			continue
		}
		var chunk types.ChatCompletionStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			t.Fatalf("failed to decode chunk %q: %v", payload, err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func eventSequence(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			names = append(names, name)
		}
	}
	return names
}

func TestChunkGrammarBasics(t *testing.T) {
	body := textFrame("Hel") + textFrame("lo") + finishFrame("stop") + "data: [DONE]\n\n"
	out, st := runChunks(t, body)

	if !strings.HasSuffix(out, "data: [DONE]\n\n") {
		t.Errorf("stream must end with the [DONE] marker:\n%s", out)
	}
	if n := strings.Count(out, "[DONE]"); n != 1 {
		t.Errorf("[DONE] count = %d, want 1", n)
	}

	chunks := decodeChunks(t, out)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}

	// Role rides only on the first chunk.
	if chunks[0].Choices[0].Delta.Role != "assistant" {
		t.Errorf("first chunk role = %q, want assistant", chunks[0].Choices[0].Delta.Role)
	}
	for i, chunk := range chunks[1:] {
		if chunk.Choices[0].Delta.Role != "" {
			t.Errorf("chunk %d carries role %q, want empty", i+1, chunk.Choices[0].Delta.Role)
		}
	}

	// All chunks share the synthesized stream id, not the upstream one.
	for _, chunk := range chunks {
		if chunk.ID != "chatcmpl-test" {
			t.Errorf("chunk id = %q, want chatcmpl-test", chunk.ID)
		}
	}

	last := chunks[len(chunks)-1]
	if last.Choices[0].FinishReason == nil || *last.Choices[0].FinishReason != "stop" {
		t.Errorf("final finish_reason = %v, want stop", last.Choices[0].FinishReason)
	}

	if st.AccumulatedText != "Hello" {
		t.Errorf("accumulated text = %q, want Hello", st.AccumulatedText)
	}
}

func TestChunkGrammarEOFWithoutSentinel(t *testing.T) {
	out, st := runChunks(t, textFrame("hi"))

	if !strings.HasSuffix(out, "data: [DONE]\n\n") {
		t.Errorf("EOF without sentinel must still terminate with [DONE]:\n%s", out)
	}
	if !st.CompletionSent {
		t.Error("CompletionSent latch not set")
	}
}

func TestChunkGrammarToolCallPassthrough(t *testing.T) {
	body := toolCallFrame(0, "call_1", "get_weather", `{"ci`) +
		toolCallFrame(0, "", "", `ty":"x"}`) +
		finishFrame("tool_calls") + "data: [DONE]\n\n"
	out, _ := runChunks(t, body)
	chunks := decodeChunks(t, out)

	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	first := chunks[0].Choices[0].Delta.ToolCalls
	if len(first) != 1 || first[0].ID != "call_1" || first[0].Function.Name != "get_weather" {
		t.Errorf("first tool call fragment = %+v", first)
	}
	second := chunks[1].Choices[0].Delta.ToolCalls
	if len(second) != 1 || second[0].Function == nil || second[0].Function.Arguments != `ty":"x"}` {
		t.Errorf("second tool call fragment = %+v", second)
	}
}

func TestChunkGrammarUsageAccounting(t *testing.T) {
	var buf bytes.Buffer
	usage := &trackedUsage{}
	st := NewState("chatcmpl-test", "")
	em := NewChunkEmitter(&buf, st, "gpt-4.1", "sess", usage, nil)

	body := textFrame("abcdefgh") + textFrame("") + "data: [DONE]\n\n"
	if err := Run(context.Background(), strings.NewReader(body), em, st); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// length/4 heuristic: 8 characters -> 2 tokens; empty fragments free.
	if usage.total != 2 {
		t.Errorf("tracked tokens = %d, want 2", usage.total)
	}
}

func TestResponsesGrammarLifecycle(t *testing.T) {
	body := textFrame("Hel") + textFrame("lo ") + textFrame("world") + "data: [DONE]\n\n"
	out, st := runResponses(t, body)

	names := eventSequence(out)
	want := []string{
		types.EventResponseCreated,
		types.EventOutputItemAdded,
		types.EventContentPartAdded,
		types.EventOutputTextDelta,
		types.EventOutputTextDelta,
		types.EventOutputTextDelta,
		types.EventOutputTextDone,
		types.EventOutputItemDone,
		types.EventResponseCompleted,
		types.EventResponseDone,
	}
	if len(names) != len(want) {
		t.Fatalf("events = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q (full: %v)", i, names[i], want[i], names)
		}
	}

	if st.AccumulatedText != "Hello world" {
		t.Errorf("accumulated text = %q, want %q", st.AccumulatedText, "Hello world")
	}
	if !strings.Contains(out, `"text":"Hello world"`) {
		t.Errorf("output_text.done must carry the full text:\n%s", out)
	}
}

func TestResponsesGrammarEOFWithoutSentinel(t *testing.T) {
	out, st := runResponses(t, textFrame("Hel")+textFrame("lo ")+textFrame("world"))

	names := eventSequence(out)
	counts := map[string]int{}
	for _, name := range names {
		counts[name]++
	}
	for _, name := range []string{
		types.EventOutputTextDone,
		types.EventOutputItemDone,
		types.EventResponseCompleted,
		types.EventResponseDone,
	} {
		if counts[name] != 1 {
			t.Errorf("%s count = %d, want 1", name, counts[name])
		}
	}
	if names[len(names)-1] != types.EventResponseDone {
		t.Errorf("last event = %q, want %s", names[len(names)-1], types.EventResponseDone)
	}
	if st.AccumulatedText != "Hello world" {
		t.Errorf("accumulated text = %q, want %q", st.AccumulatedText, "Hello world")
	}
}

func TestResponsesGrammarAddedEventsAtMostOnce(t *testing.T) {
	// Many text fragments; the item/part added pair must fire once.
	var body string
	for i := 0; i < 10; i++ {
		body += textFrame("x")
	}
	out, _ := runResponses(t, body+"data: [DONE]\n\n")

	counts := map[string]int{}
	for _, name := range eventSequence(out) {
		counts[name]++
	}
	if counts[types.EventOutputItemAdded] != 1 {
		t.Errorf("output_item.added count = %d, want 1", counts[types.EventOutputItemAdded])
	}
	if counts[types.EventContentPartAdded] != 1 {
		t.Errorf("content_part.added count = %d, want 1", counts[types.EventContentPartAdded])
	}
	if counts[types.EventOutputTextDelta] != 10 {
		t.Errorf("output_text.delta count = %d, want 10", counts[types.EventOutputTextDelta])
	}
}

func TestResponsesGrammarToolCalls(t *testing.T) {
	body := toolCallFrame(0, "call_1", "get_weather", `{"ci`) +
		toolCallFrame(0, "", "", `ty":"x"}`) +
		"data: [DONE]\n\n"
	out, _ := runResponses(t, body)

	names := eventSequence(out)
	counts := map[string]int{}
	for _, name := range names {
		counts[name]++
	}
	if counts[types.EventOutputItemAdded] != 1 {
		t.Errorf("output_item.added count = %d, want 1 (function call item)", counts[types.EventOutputItemAdded])
	}
	if counts[types.EventFunctionCallArgsDelta] != 1 {
		t.Errorf("function_call_arguments.delta count = %d, want 1", counts[types.EventFunctionCallArgsDelta])
	}

	// The completed response carries the accumulated arguments.
	if !strings.Contains(out, `{\"city\":\"x\"}`) {
		t.Errorf("final output missing accumulated arguments:\n%s", out)
	}
}

func TestResponsesGrammarToolCallOnlyIndexes(t *testing.T) {
	body := toolCallFrame(0, "call_1", "get_weather", `{"city":"x"}`) +
		finishFrame("tool_calls") + "data: [DONE]\n\n"
	out, _ := runResponses(t, body)

	indexes := map[string][]float64{}
	var completedOutput []any
	for _, line := range strings.Split(out, "\n") {
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev map[string]any
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			t.Fatalf("failed to decode event %q: %v", payload, err)
		}
		name, _ := ev["type"].(string)
		if idx, ok := ev["output_index"].(float64); ok {
			indexes[name] = append(indexes[name], idx)
		}
		if name == types.EventResponseCompleted {
			resp := ev["response"].(map[string]any)
			completedOutput = resp["output"].([]any)
		}
	}

	// The function-call item owns index 0; the message closers must not
	// reuse it.
	if got := indexes[types.EventOutputItemAdded]; len(got) != 1 || got[0] != 0 {
		t.Errorf("function call item added at indexes %v, want [0]", got)
	}
	if got := indexes[types.EventOutputTextDone]; len(got) != 1 || got[0] != 1 {
		t.Errorf("output_text.done at indexes %v, want [1]", got)
	}
	if got := indexes[types.EventOutputItemDone]; len(got) != 1 || got[0] != 1 {
		t.Errorf("output_item.done at indexes %v, want [1]", got)
	}

	if len(completedOutput) != 2 {
		t.Fatalf("completed output items = %d, want 2", len(completedOutput))
	}
	first := completedOutput[0].(map[string]any)
	second := completedOutput[1].(map[string]any)
	if first["type"] != "function_call" || second["type"] != "message" {
		t.Errorf("completed output order = [%v %v], want [function_call message]",
			first["type"], second["type"])
	}
}

type recordingObserver struct {
	events      map[string]int
	tokens      map[string]int
	parseErrors int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{events: map[string]int{}, tokens: map[string]int{}}
}

func (o *recordingObserver) RecordEvent(dialect, event string) {
	o.events[dialect+"/"+event]++
}

func (o *recordingObserver) RecordEstimatedTokens(model string, tokens int) {
	o.tokens[model] += tokens
}

func (o *recordingObserver) RecordFrameParseError() {
	o.parseErrors++
}

func TestChunkEmitterReportsToObserver(t *testing.T) {
	obs := newRecordingObserver()
	var buf bytes.Buffer
	st := NewState("chatcmpl-test", "")
	em := NewChunkEmitter(&buf, st, "gpt-4.1", "sess", NopTracker{}, obs)

	body := textFrame("abcdefgh") + "data: {not json}\n\n" + "data: [DONE]\n\n"
	if err := Run(context.Background(), strings.NewReader(body), em, st); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := obs.events["chat/chunk"]; got != 1 {
		t.Errorf("chunk events = %d, want 1", got)
	}
	if got := obs.events["chat/error"]; got != 1 {
		t.Errorf("error events = %d, want 1", got)
	}
	if got := obs.events["chat/done"]; got != 1 {
		t.Errorf("done events = %d, want 1", got)
	}
	if got := obs.parseErrors; got != 1 {
		t.Errorf("parse errors = %d, want 1", got)
	}
	if got := obs.tokens["gpt-4.1"]; got != 2 {
		t.Errorf("estimated tokens for gpt-4.1 = %d, want 2", got)
	}
}

func TestResponsesEmitterReportsToObserver(t *testing.T) {
	obs := newRecordingObserver()
	var buf bytes.Buffer
	st := NewState("resp_test", "msg_test")
	em := NewResponsesEmitter(&buf, st, "gpt-4.1", "sess", NopTracker{}, obs)

	body := textFrame("abcd") + "data: [DONE]\n\n"
	if err := Run(context.Background(), strings.NewReader(body), em, st); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{
		types.EventResponseCreated,
		types.EventOutputItemAdded,
		types.EventContentPartAdded,
		types.EventOutputTextDelta,
		types.EventOutputTextDone,
		types.EventOutputItemDone,
		types.EventResponseCompleted,
		types.EventResponseDone,
	} {
		if got := obs.events["responses/"+name]; got != 1 {
			t.Errorf("%s events = %d, want 1", name, got)
		}
	}
	if got := obs.tokens["gpt-4.1"]; got != 1 {
		t.Errorf("estimated tokens for gpt-4.1 = %d, want 1", got)
	}
}

func TestMalformedFrameEmitsFaultAndContinues(t *testing.T) {
	body := textFrame("ok") + "data: {not json}\n\n" + textFrame("fine") + "data: [DONE]\n\n"

	var buf bytes.Buffer
	st := NewState("resp_test", "msg_test")
	em := NewResponsesEmitter(&buf, st, "gpt-4.1", "sess", NopTracker{}, nil)
	if err := Run(context.Background(), strings.NewReader(body), em, st); err != nil {
		t.Fatalf("Run should tolerate a malformed frame: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "event: error") {
		t.Error("expected an inline error event for the malformed frame")
	}
	if st.AccumulatedText != "okfine" {
		t.Errorf("accumulated text = %q, want okfine (stream continues after fault)", st.AccumulatedText)
	}
	names := eventSequence(out)
	if names[len(names)-1] != types.EventResponseDone {
		t.Errorf("stream must still close cleanly, last event = %q", names[len(names)-1])
	}
}

func TestCancelledContextStopsPipeline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	st := NewState("chatcmpl-test", "")
	em := NewChunkEmitter(&buf, st, "gpt-4.1", "sess", NopTracker{}, nil)
	err := Run(ctx, strings.NewReader(textFrame("hi")+"data: [DONE]\n\n"), em, st)
	if err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if st.CompletionSent {
		t.Error("cancelled stream must not write the closing sequence")
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcdefgh", 2},
		{strings.Repeat("x", 100), 25},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
