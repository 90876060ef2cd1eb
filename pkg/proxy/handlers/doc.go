// Package handlers implements the OpenAI-compatible HTTP endpoints.
//
// The Gateway translates three request dialects onto the single Copilot
// chat endpoint: chat completions, legacy text completions, and the
// responses API. Streaming replies are re-synthesized per dialect by the
// stream package; non-streaming replies are decoded once and reshaped.
package handlers
