package types

// Responses-API wire shapes. For streaming requests these payloads ride on
// named SSE events (response.created, response.output_item.added, ...);
// for non-streaming requests the ResponseObject is returned directly.

// ResponseObject is the top-level response in the responses grammar.
type ResponseObject struct {
	// ID identifies the response (format: "resp_<id>").
	ID string `json:"id"`

	// Object is always "response".
	Object string `json:"object"`

	// CreatedAt is the Unix timestamp when the response was created.
	CreatedAt int64 `json:"created_at"`

	// Status is "in_progress" while streaming and "completed" afterwards.
	Status string `json:"status"`

	// Model is the model generating the response.
	Model string `json:"model"`

	// Output is the list of output items, populated on completion.
	Output []OutputItem `json:"output"`

	// Usage contains token usage, populated on completion.
	Usage *ResponseUsage `json:"usage,omitempty"`
}

// OutputItem is one item in a response's output: an assistant message or a
// function call.
type OutputItem struct {
	// ID identifies the item ("msg_<id>" or "fc_<id>").
	ID string `json:"id"`

	// Type is "message" or "function_call".
	Type string `json:"type"`

	// Status is "in_progress" or "completed".
	Status string `json:"status,omitempty"`

	// Role is "assistant" on message items.
	Role string `json:"role,omitempty"`

	// Content holds the message item's parts.
	Content []ContentPart `json:"content,omitempty"`

	// CallID, Name and Arguments are set on function-call items.
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ContentPart is one part of a message item's content.
type ContentPart struct {
	// Type is "output_text".
	Type string `json:"type"`

	// Text is the part's text.
	Text string `json:"text"`
}

// ResponseUsage is the responses-grammar usage envelope.
type ResponseUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Responses-grammar SSE event names. Exact strings, case-significant.
const (
	EventResponseCreated       = "response.created"
	EventOutputItemAdded       = "response.output_item.added"
	EventContentPartAdded      = "response.content_part.added"
	EventOutputTextDelta       = "response.output_text.delta"
	EventFunctionCallArgsDelta = "response.function_call_arguments.delta"
	EventOutputTextDone        = "response.output_text.done"
	EventOutputItemDone        = "response.output_item.done"
	EventResponseCompleted     = "response.completed"
	EventResponseDone          = "response.done"
	EventError                 = "error"
)
