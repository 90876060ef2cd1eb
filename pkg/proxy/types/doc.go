// Package types defines the OpenAI-compatible wire types the gateway
// accepts and emits: chat completion requests and responses, legacy
// text completions, the responses API shapes, and the standard error
// envelope.
//
// The structures match the OpenAI API formats field for field so
// unmodified OpenAI SDKs can point their base URL at the gateway.
// Request types carry Validate methods; validation failures map to
// the OpenAI error envelope with HTTP 400.
package types
