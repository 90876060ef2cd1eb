package translate

import "encoding/json"

// ChatMessage is a single message in a conversation, in the upstream wire
// shape. Content is a pointer so "explicit null" survives a round trip.
type ChatMessage struct {
	// Role identifies the sender (system, user, assistant, tool).
	Role string `json:"role"`

	// Content is the message text. Nil encodes as null, which assistant
	// messages carrying only tool calls use.
	Content *string `json:"content"`

	// Name is an optional sender name.
	Name string `json:"name,omitempty"`

	// ToolCalls contains the calls emitted by an assistant message.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID references the originating call on tool-role messages.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is a function/tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and its JSON-encoded arguments.
// Arguments is an opaque string: during streaming it is accumulated
// incrementally and may be an incomplete JSON fragment at any given moment.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition is the canonical tool shape sent upstream.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition defines a callable function.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Strict      *bool          `json:"strict,omitempty"`
}

// UpstreamRequest is the outbound body for the Copilot chat endpoint.
// Optional fields carry omitempty so absent collections are omitted
// entirely rather than sent as empty arrays, which trips upstream
// validation.
type UpstreamRequest struct {
	Model             string           `json:"model"`
	Messages          []ChatMessage    `json:"messages"`
	MaxTokens         int              `json:"max_tokens"`
	Temperature       float64          `json:"temperature"`
	TopP              float64          `json:"top_p"`
	N                 int              `json:"n"`
	Stream            bool             `json:"stream"`
	Tools             []ToolDefinition `json:"tools,omitempty"`
	ToolChoice        json.RawMessage  `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool            `json:"parallel_tool_calls,omitempty"`
	Stop              []string         `json:"stop,omitempty"`
}

// StringPtr returns a pointer to s. Convenience for ChatMessage.Content.
func StringPtr(s string) *string {
	return &s
}

// ContentText returns the message text, treating nil content as empty.
func (m *ChatMessage) ContentText() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}
