package types

import (
	"encoding/json"
	"fmt"
)

// ChatCompletionRequest is an OpenAI-compatible chat completion request.
// This matches the Chat Completions wire format so existing OpenAI SDKs
// work against the proxy unchanged.
type ChatCompletionRequest struct {
	// Model is the requested model identifier. Resolved through the alias
	// table before the upstream call.
	Model string `json:"model"`

	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 2.0). Optional.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate. Optional.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0). Optional.
	TopP *float64 `json:"top_p,omitempty"`

	// N is the number of completions per prompt. Optional, defaults to 1.
	N *int `json:"n,omitempty"`

	// Stream enables server-sent events streaming.
	Stream bool `json:"stream,omitempty"`

	// Stop is a list of sequences that halt generation. Maximum 4.
	Stop []string `json:"stop,omitempty"`

	// User is an end-user identifier for tracking. Optional.
	User string `json:"user,omitempty"`

	// Tools are the caller's tool declarations. Kept raw: callers send
	// several historical shapes, and the normalizer classifies them.
	Tools []json.RawMessage `json:"tools,omitempty"`

	// ToolChoice controls which tool the model may call. Passed through
	// opaque when tools survive normalization.
	ToolChoice json.RawMessage `json:"tool_choice,omitempty"`

	// ParallelToolCalls toggles parallel function calling. Optional.
	ParallelToolCalls *bool `json:"parallel_tool_calls,omitempty"`
}

// Message is a single message in the caller's conversation history.
type Message struct {
	// Role is the author ("system", "user", "assistant", or "tool").
	Role string `json:"role"`

	// Content is the text content: a string, or an array of content parts
	// for multimodal callers, or null on assistant tool-call turns.
	Content interface{} `json:"content"`

	// Name is the optional author name.
	Name string `json:"name,omitempty"`

	// ToolCalls are calls emitted by an assistant message.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID references the originating call on tool-role messages.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is a function call made by the model.
type ToolCall struct {
	// ID is a unique identifier for the tool call.
	ID string `json:"id"`

	// Type is always "function".
	Type string `json:"type"`

	// Function contains the function name and arguments.
	Function FunctionCall `json:"function"`
}

// FunctionCall is the function name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// CompletionRequest is the legacy text-completion request shape. The proxy
// maps it onto a single-turn chat request before forwarding.
type CompletionRequest struct {
	// Model is the requested model identifier.
	Model string `json:"model"`

	// Prompt is the completion prompt. A string, or an array of strings
	// (only the first is used).
	Prompt interface{} `json:"prompt"`

	// Suffix is text appended after the completion point. Optional.
	Suffix string `json:"suffix,omitempty"`

	// MaxTokens is the maximum number of tokens to generate. Optional.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness. Optional.
	Temperature *float64 `json:"temperature,omitempty"`

	// Stream enables server-sent events streaming.
	Stream bool `json:"stream,omitempty"`

	// Stop is a list of sequences that halt generation.
	Stop []string `json:"stop,omitempty"`
}

// ResponsesRequest is the newer "responses" request shape.
type ResponsesRequest struct {
	// Model is the requested model identifier.
	Model string `json:"model"`

	// Input is the caller input: a plain string, or a structured sequence
	// of input items, each with a role and content.
	Input interface{} `json:"input"`

	// Instructions is an optional system-style preamble.
	Instructions string `json:"instructions,omitempty"`

	// MaxOutputTokens caps generated tokens. Optional.
	MaxOutputTokens *int `json:"max_output_tokens,omitempty"`

	// Temperature controls randomness. Optional.
	Temperature *float64 `json:"temperature,omitempty"`

	// Tools are the caller's tool declarations, raw for normalization.
	Tools []json.RawMessage `json:"tools,omitempty"`

	// Stream enables server-sent events streaming.
	Stream bool `json:"stream,omitempty"`
}

// Validate checks required fields and value ranges on a chat request.
func (r *ChatCompletionRequest) Validate() error {
	if r.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}
	if len(r.Messages) == 0 {
		return &ValidationError{Field: "messages", Message: "messages must contain at least one message"}
	}
	if r.Temperature != nil && (*r.Temperature < 0.0 || *r.Temperature > 2.0) {
		return &ValidationError{Field: "temperature", Message: "temperature must be between 0.0 and 2.0"}
	}
	if r.TopP != nil && (*r.TopP < 0.0 || *r.TopP > 1.0) {
		return &ValidationError{Field: "top_p", Message: "top_p must be between 0.0 and 1.0"}
	}
	if r.MaxTokens != nil && *r.MaxTokens < 1 {
		return &ValidationError{Field: "max_tokens", Message: "max_tokens must be greater than 0"}
	}
	if r.N != nil && *r.N < 1 {
		return &ValidationError{Field: "n", Message: "n must be greater than 0"}
	}
	if len(r.Stop) > 4 {
		return &ValidationError{Field: "stop", Message: "stop sequences must not exceed 4"}
	}

	for i, msg := range r.Messages {
		if msg.Role == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: "message role is required",
			}
		}
	}

	return nil
}

// Validate checks required fields on a legacy completion request.
func (r *CompletionRequest) Validate() error {
	if r.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}
	if r.Prompt == nil {
		return &ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	if r.MaxTokens != nil && *r.MaxTokens < 1 {
		return &ValidationError{Field: "max_tokens", Message: "max_tokens must be greater than 0"}
	}
	return nil
}

// Validate checks required fields on a responses request.
func (r *ResponsesRequest) Validate() error {
	if r.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}
	if r.Input == nil {
		return &ValidationError{Field: "input", Message: "input is required"}
	}
	if r.MaxOutputTokens != nil && *r.MaxOutputTokens < 1 {
		return &ValidationError{Field: "max_output_tokens", Message: "max_output_tokens must be greater than 0"}
	}
	return nil
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
