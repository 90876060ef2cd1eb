package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
	"github.com/youssefadel94/github-copilot-proxy/pkg/telemetry/logging"
)

const (
	// DefaultMaxBodyBytes is the request body cap when the config
	// does not set one.
	DefaultMaxBodyBytes = 10 * 1024 * 1024

	// RequestIDHeader carries a client-supplied request ID.
	RequestIDHeader = "X-Request-ID"

	// SessionIDHeader carries a client-supplied session identifier
	// used for rate limiting and usage accounting.
	SessionIDHeader = "X-Session-ID"
)

// ParseChatCompletionRequest decodes and validates a chat completions
// body. The body is capped at maxBytes (DefaultMaxBodyBytes when zero).
func ParseChatCompletionRequest(r *http.Request, maxBytes int64) (*types.ChatCompletionRequest, error) {
	var req types.ChatCompletionRequest
	if err := decodeBody(r, maxBytes, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationToRequestError(err)
	}
	return &req, nil
}

// ParseCompletionRequest decodes and validates a legacy completions body.
func ParseCompletionRequest(r *http.Request, maxBytes int64) (*types.CompletionRequest, error) {
	var req types.CompletionRequest
	if err := decodeBody(r, maxBytes, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationToRequestError(err)
	}
	return &req, nil
}

// ParseResponsesRequest decodes and validates a responses API body.
func ParseResponsesRequest(r *http.Request, maxBytes int64) (*types.ResponsesRequest, error) {
	var req types.ResponsesRequest
	if err := decodeBody(r, maxBytes, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationToRequestError(err)
	}
	return &req, nil
}

func decodeBody(r *http.Request, maxBytes int64, dst any) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBytes),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}
	return nil
}

func validationToRequestError(err error) error {
	if valErr, ok := err.(*types.ValidationError); ok {
		return &RequestError{
			Message: valErr.Message,
			Code:    types.CodeInvalidValue,
			Param:   valErr.Field,
		}
	}
	return err
}

// ExtractRequestID returns the request ID: the client-supplied header when
// present, otherwise the one the middleware generated into the context.
func ExtractRequestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return logging.GetRequestID(r.Context())
}

// ExtractSessionID returns the session identifier for limit and usage
// accounting. The rate-limit middleware resolves it once and stores it in
// the context; outside that chain the header decides, and clients that do
// not send one are grouped by client host.
func ExtractSessionID(r *http.Request) string {
	if id := logging.GetSessionID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(SessionIDHeader); id != "" {
		return id
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to an OpenAI-compatible error response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}
