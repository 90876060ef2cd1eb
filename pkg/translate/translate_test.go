package translate

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildUpstreamRequestDefaults(t *testing.T) {
	messages := []ChatMessage{{Role: "user", Content: StringPtr("hi")}}
	req := BuildUpstreamRequest("gpt-4.1", messages, RequestOptions{})

	if req.MaxTokens != DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", req.MaxTokens, DefaultMaxTokens)
	}
	if req.Temperature != DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", req.Temperature, DefaultTemperature)
	}
	if req.TopP != DefaultTopP {
		t.Errorf("TopP = %v, want %v", req.TopP, DefaultTopP)
	}
	if req.N != DefaultN {
		t.Errorf("N = %d, want %d", req.N, DefaultN)
	}
}

func TestBuildUpstreamRequestExplicitOptions(t *testing.T) {
	maxTokens := 128
	temp := 0.0
	messages := []ChatMessage{{Role: "user", Content: StringPtr("hi")}}

	req := BuildUpstreamRequest("gpt-4.1", messages, RequestOptions{
		MaxTokens:   &maxTokens,
		Temperature: &temp,
		Stop:        []string{"\n"},
	})

	if req.MaxTokens != 128 {
		t.Errorf("MaxTokens = %d, want 128", req.MaxTokens)
	}
	// Explicit zero must survive; it is not "absent".
	if req.Temperature != 0.0 {
		t.Errorf("Temperature = %v, want 0.0", req.Temperature)
	}
	if len(req.Stop) != 1 {
		t.Errorf("Stop = %v", req.Stop)
	}
}

func TestBuildUpstreamRequestOmitsEmptyTools(t *testing.T) {
	messages := []ChatMessage{{Role: "user", Content: StringPtr("hi")}}
	req := BuildUpstreamRequest("gpt-4.1", messages, RequestOptions{
		ToolChoice: json.RawMessage(`"auto"`),
	})

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"tools"`) {
		t.Errorf("tools must be omitted when absent: %s", data)
	}
	// tool_choice without tools must also be dropped.
	if strings.Contains(string(data), `"tool_choice"`) {
		t.Errorf("tool_choice must be omitted without tools: %s", data)
	}
}

func TestNullContentSurvivesRoundTrip(t *testing.T) {
	msg := ChatMessage{
		Role: "assistant",
		ToolCalls: []ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: FunctionCall{Name: "f", Arguments: "{}"},
		}},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"content":null`) {
		t.Errorf("nil content must encode as explicit null: %s", data)
	}
}

func TestRepairHistoryKeepsPairedToolResults(t *testing.T) {
	messages := []ChatMessage{
		{Role: "user", Content: StringPtr("weather?")},
		{Role: "assistant", ToolCalls: []ToolCall{{
			ID: "call_1", Type: "function",
			Function: FunctionCall{Name: "get_weather", Arguments: `{}`},
		}}},
		{Role: "tool", ToolCallID: "call_1", Content: StringPtr("sunny")},
	}

	repaired := RepairHistory(messages)
	if len(repaired) != 3 {
		t.Fatalf("len = %d, want 3", len(repaired))
	}
	if repaired[2].Role != "tool" {
		t.Errorf("paired tool result rewritten to %q", repaired[2].Role)
	}
}

func TestRepairHistoryRewritesOrphans(t *testing.T) {
	messages := []ChatMessage{
		{Role: "user", Content: StringPtr("hi")},
		{Role: "tool", ToolCallID: "call_gone", Content: StringPtr("stale output")},
	}

	repaired := RepairHistory(messages)
	if len(repaired) != 2 {
		t.Fatalf("len = %d, want 2 (order preserved)", len(repaired))
	}
	orphan := repaired[1]
	if orphan.Role != "user" {
		t.Fatalf("orphan role = %q, want user", orphan.Role)
	}
	text := orphan.ContentText()
	if !strings.Contains(text, "call_gone") || !strings.Contains(text, "stale output") {
		t.Errorf("rewritten orphan = %q, want id and content referenced", text)
	}
	if orphan.ToolCallID != "" {
		t.Error("rewritten orphan must not keep tool_call_id")
	}
}

func TestRepairHistoryCapsOrphanSummary(t *testing.T) {
	long := strings.Repeat("a", 500)
	messages := []ChatMessage{
		{Role: "tool", ToolCallID: "call_x", Content: StringPtr(long)},
	}

	repaired := RepairHistory(messages)
	text := repaired[0].ContentText()
	if !strings.HasSuffix(text, "...") {
		t.Errorf("long orphan content must be truncated with ellipsis: %q", text[len(text)-20:])
	}
	if len(text) > maxOrphanSummaryLen+100 {
		t.Errorf("summary length = %d, should be capped near %d", len(text), maxOrphanSummaryLen)
	}
}

func TestRepairHistoryTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("€", 100) // 3 bytes each, 300 bytes total
	messages := []ChatMessage{
		{Role: "tool", ToolCallID: "call_x", Content: StringPtr(long)},
	}

	repaired := RepairHistory(messages)
	text := repaired[0].ContentText()
	if !utf8.ValidString(text) {
		t.Errorf("truncated summary is not valid UTF-8: %q", text)
	}
	if !strings.HasSuffix(text, "...") {
		t.Errorf("summary missing ellipsis: %q", text)
	}
}

func TestRepairHistoryIdempotent(t *testing.T) {
	messages := []ChatMessage{
		{Role: "tool", ToolCallID: "call_gone", Content: StringPtr("x")},
	}
	once := RepairHistory(messages)
	twice := RepairHistory(once)
	if once[0].ContentText() != twice[0].ContentText() || twice[0].Role != "user" {
		t.Errorf("second pass changed output: %+v vs %+v", once[0], twice[0])
	}
}

func TestNormalizeToolsShapes(t *testing.T) {
	raw := []json.RawMessage{
		// Canonical shape.
		json.RawMessage(`{"type":"function","function":{"name":"a","description":"d","parameters":{"type":"object"}}}`),
		// Custom variant.
		json.RawMessage(`{"type":"custom","custom":{"name":"b"}}`),
		// Bare legacy shape.
		json.RawMessage(`{"name":"c","description":"bare"}`),
		// Hosted tool, silently skipped.
		json.RawMessage(`{"type":"web_search"}`),
		// Missing name, skipped with a diagnostic.
		json.RawMessage(`{"type":"function","function":{"description":"anonymous"}}`),
		// Malformed JSON, skipped.
		json.RawMessage(`{broken`),
	}

	tools := NormalizeTools(raw)
	if len(tools) != 3 {
		t.Fatalf("normalized = %d tools, want 3: %+v", len(tools), tools)
	}
	for i, name := range []string{"a", "b", "c"} {
		if tools[i].Type != "function" {
			t.Errorf("tool %d type = %q, want function", i, tools[i].Type)
		}
		if tools[i].Function.Name != name {
			t.Errorf("tool %d name = %q, want %q", i, tools[i].Function.Name, name)
		}
	}
}

func TestNormalizeToolsDefaultsParameters(t *testing.T) {
	tools := NormalizeTools([]json.RawMessage{
		json.RawMessage(`{"type":"function","function":{"name":"a"}}`),
	})
	if len(tools) != 1 {
		t.Fatalf("normalized = %d, want 1", len(tools))
	}
	params := tools[0].Function.Parameters
	if params == nil {
		t.Fatal("absent parameters must default to an empty object schema")
	}
	if params["type"] != "object" {
		t.Errorf("default schema type = %v, want object", params["type"])
	}
}

func TestNormalizeToolsNilWhenEmpty(t *testing.T) {
	if got := NormalizeTools(nil); got != nil {
		t.Errorf("NormalizeTools(nil) = %v, want nil", got)
	}
	filtered := NormalizeTools([]json.RawMessage{
		json.RawMessage(`{"type":"web_search"}`),
	})
	if filtered != nil {
		t.Errorf("fully filtered input must return nil, got %v", filtered)
	}
}
