package translate

import "encoding/json"

// Default sampling parameters applied when the caller omits them.
// These match the defaults the upstream documents for its chat endpoint.
const (
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0
	DefaultN           = 1
)

// RequestOptions are the caller-controlled knobs for an upstream request.
// Pointer fields distinguish "omitted" from "explicit zero".
type RequestOptions struct {
	MaxTokens         *int
	Temperature       *float64
	TopP              *float64
	N                 *int
	Stream            bool
	Tools             []ToolDefinition
	ToolChoice        json.RawMessage
	ParallelToolCalls *bool
	Stop              []string
}

// BuildUpstreamRequest assembles the outbound body from an already-resolved
// model name, an already-repaired message history, and the caller's options.
//
// Collections are only set when non-empty: Tools carries omitempty, so an
// absent tools list is omitted from the JSON entirely rather than encoded
// as [].
func BuildUpstreamRequest(model string, messages []ChatMessage, opts RequestOptions) *UpstreamRequest {
	req := &UpstreamRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		N:           DefaultN,
		Stream:      opts.Stream,
	}

	if opts.MaxTokens != nil && *opts.MaxTokens > 0 {
		req.MaxTokens = *opts.MaxTokens
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.TopP != nil {
		req.TopP = *opts.TopP
	}
	if opts.N != nil && *opts.N > 0 {
		req.N = *opts.N
	}

	if len(opts.Tools) > 0 {
		req.Tools = opts.Tools
		req.ToolChoice = opts.ToolChoice
		req.ParallelToolCalls = opts.ParallelToolCalls
	}
	if len(opts.Stop) > 0 {
		req.Stop = opts.Stop
	}

	return req
}
