package types

// ChatCompletionResponse is an OpenAI-compatible chat completion response,
// returned for non-streaming requests.
type ChatCompletionResponse struct {
	// ID is a unique identifier for the chat completion.
	ID string `json:"id"`

	// Object is always "chat.completion".
	Object string `json:"object"`

	// Created is the Unix timestamp when the completion was created.
	Created int64 `json:"created"`

	// Model is the model used for the completion.
	Model string `json:"model"`

	// Choices is the list of completion choices (typically one).
	Choices []Choice `json:"choices"`

	// Usage contains token usage statistics.
	Usage Usage `json:"usage"`
}

// Choice is a single completion choice.
type Choice struct {
	// Index is the index of this choice.
	Index int `json:"index"`

	// Message is the generated message.
	Message Message `json:"message"`

	// FinishReason explains why generation stopped
	// ("stop", "length", "tool_calls", "content_filter").
	FinishReason string `json:"finish_reason"`
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the legacy text-completion response shape.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   Usage              `json:"usage"`
}

// CompletionChoice is a single legacy completion choice.
type CompletionChoice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

// ChatCompletionStreamChunk is one chunk of a streaming response, sent as
// an unnamed SSE data frame when stream=true.
type ChatCompletionStreamChunk struct {
	// ID is the response identifier, shared by every chunk of one stream.
	ID string `json:"id"`

	// Object is always "chat.completion.chunk".
	Object string `json:"object"`

	// Created is the Unix timestamp when the chunk was created.
	Created int64 `json:"created"`

	// Model is the model generating the response.
	Model string `json:"model"`

	// Choices is the list of streaming choices.
	Choices []StreamChoice `json:"choices"`
}

// StreamChoice is a single choice in a streaming chunk.
type StreamChoice struct {
	// Index is the index of this choice.
	Index int `json:"index"`

	// Delta contains the incremental content.
	Delta Delta `json:"delta"`

	// FinishReason is non-nil only on the chunk that closes the choice.
	FinishReason *string `json:"finish_reason"`
}

// Delta is the incremental content in a streaming chunk.
type Delta struct {
	// Role is the message author, present only in the first chunk.
	Role string `json:"role,omitempty"`

	// Content is the incremental text fragment.
	Content string `json:"content,omitempty"`

	// ToolCalls are incremental tool call fragments.
	ToolCalls []StreamToolCall `json:"tool_calls,omitempty"`
}

// StreamToolCall is an incremental tool-call fragment in a chunk delta.
// The first fragment for a call carries ID and the function name; later
// fragments carry only an arguments piece.
type StreamToolCall struct {
	Index    int                  `json:"index"`
	ID       string               `json:"id,omitempty"`
	Type     string               `json:"type,omitempty"`
	Function *StreamFunctionDelta `json:"function,omitempty"`
}

// StreamFunctionDelta is the function part of a tool-call fragment.
type StreamFunctionDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}
