// Package proxy implements the OpenAI-compatible HTTP surface of the
// gateway: request parsing and validation for the chat completions,
// legacy completions, and responses endpoints, response and SSE
// helpers, and the mapping from internal errors to the OpenAI error
// envelope.
//
// Handlers live in the handlers subpackage, middleware in middleware,
// and the wire types in types.
package proxy
