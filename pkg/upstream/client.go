package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/youssefadel94/github-copilot-proxy/pkg/translate"
)

// TokenSource supplies a usable upstream bearer token. Implemented by
// pkg/auth; consumed here as an interface so tests can stub it.
type TokenSource interface {
	// Token returns a currently valid upstream token, refreshing if needed.
	Token(ctx context.Context) (string, error)
}

// Config contains the upstream client configuration.
type Config struct {
	// BaseURL is the upstream API base (e.g. "https://api.githubcopilot.com").
	BaseURL string

	// ConnectTimeout bounds dialing the upstream.
	ConnectTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for upstream response headers
	// after the request is written. Stream duration is deliberately
	// unbounded; only the initial open is timed.
	ResponseHeaderTimeout time.Duration

	// Connection pool settings.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// Client is the HTTP client for the Copilot chat endpoint, with connection
// pooling and the mandatory identity headers on every call.
type Client struct {
	config Config
	tokens TokenSource
	client *http.Client
}

// NewClient creates an upstream client with a pooled transport.
func NewClient(cfg Config, tokens TokenSource) *Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}

	// No client-level timeout: it would cut long-lived SSE streams short.
	// The transport's ResponseHeaderTimeout covers the "upstream never
	// opens a body" case, and context cancellation covers the rest.
	return &Client{
		config: cfg,
		tokens: tokens,
		client: &http.Client{Transport: transport},
	}
}

// Chat sends a chat completion request and returns the raw response.
// The caller owns resp.Body. For streaming requests the body is the SSE
// stream; hand it to NewFrameReader.
//
// Non-2xx statuses are drained, closed, and returned as typed errors.
func (c *Client) Chat(ctx context.Context, req *translate.UpstreamRequest, meta RequestMeta) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, &AuthError{Message: "no usable upstream credential", Cause: err}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}

	setHeaders(httpReq, token, meta)
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Message: "request failed", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.responseError(resp)
	}

	return resp, nil
}

// responseError converts a non-success response into a typed error,
// consuming and closing the body.
func (c *Client) responseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Message: string(text)}
	case http.StatusTooManyRequests:
		var retryAfter time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter, Message: string(text)}
	default:
		return &Error{StatusCode: resp.StatusCode, Message: string(text)}
	}
}
