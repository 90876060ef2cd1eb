package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy"
	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
	"github.com/youssefadel94/github-copilot-proxy/pkg/stream"
	"github.com/youssefadel94/github-copilot-proxy/pkg/translate"
	"github.com/youssefadel94/github-copilot-proxy/pkg/upstream"
)

// ChatCompletions handles POST /v1/chat/completions. Streaming requests
// produce chat.completion.chunk SSE frames closed by [DONE]; non-streaming
// requests return the upstream completion as a single JSON body.
func (g *Gateway) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	const endpoint = "chat_completions"

	if r.Method != http.MethodPost {
		writeMethodNotAllowed(ctx, w, r.Method)
		return
	}

	req, err := proxy.ParseChatCompletionRequest(r, g.maxBodyBytes)
	if err != nil {
		writeError(ctx, w, err)
		g.recordRequest(endpoint, "", "invalid", start)
		return
	}

	meta := proxy.NewRequestMetadata(r, endpoint)
	meta.Model = req.Model
	meta.ResolvedModel = g.resolver.Resolve(req.Model)
	meta.Stream = req.Stream

	slog.InfoContext(ctx, "chat completion request",
		append(meta.LogFields(), "messages", len(req.Messages))...)

	messages := translate.RepairHistory(chatMessages(req.Messages))
	upReq := translate.BuildUpstreamRequest(meta.ResolvedModel, messages, translate.RequestOptions{
		MaxTokens:         req.MaxTokens,
		Temperature:       req.Temperature,
		TopP:              req.TopP,
		N:                 req.N,
		Stream:            req.Stream,
		Tools:             translate.NormalizeTools(req.Tools),
		ToolChoice:        req.ToolChoice,
		ParallelToolCalls: req.ParallelToolCalls,
		Stop:              req.Stop,
	})

	g.usage.TrackRequest(meta.SessionID)

	resp, err := g.callUpstream(ctx, upReq, meta, upstream.IntentConversation, upstream.InitiatorFor(messages))
	if err != nil {
		slog.ErrorContext(ctx, "upstream request failed",
			append(meta.LogFields(), "error", err)...)
		writeError(ctx, w, err)
		g.recordRequest(endpoint, meta.ResolvedModel, "upstream_error", start)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if req.Stream {
		g.streamChunks(ctx, w, resp, meta)
		g.recordRequest(endpoint, meta.ResolvedModel, "ok", start)
		return
	}

	completion, err := decodeChatCompletion(resp.Body)
	if err != nil {
		writeError(ctx, w, err)
		g.recordRequest(endpoint, meta.ResolvedModel, "upstream_error", start)
		return
	}
	g.usage.Track(meta.SessionID, completion.Usage.CompletionTokens)

	if err := proxy.WriteJSONResponse(w, http.StatusOK, completion); err != nil {
		slog.ErrorContext(ctx, "failed to write response",
			append(meta.LogFields(), "error", err)...)
	}
	g.recordRequest(endpoint, meta.ResolvedModel, "ok", start)
}

// streamChunks drives a chunk-grammar stream from the upstream body.
func (g *Gateway) streamChunks(ctx context.Context, w http.ResponseWriter, resp *http.Response, meta *proxy.RequestMetadata) {
	proxy.SetSSEHeaders(w)
	g.streamStarted()
	defer g.streamFinished()

	st := stream.NewState(newID("chatcmpl-"), "")
	em := stream.NewChunkEmitter(w, st, meta.ResolvedModel, meta.SessionID, g.usage, g.streamObserver())

	if err := stream.Run(ctx, resp.Body, em, st); err != nil {
		// Headers are already flushed; the emitter wrote an inline
		// error frame where one was possible.
		slog.WarnContext(ctx, "stream ended with error",
			append(meta.LogFields(), "chunks", st.ChunkCount, "error", err)...)
		return
	}

	slog.InfoContext(ctx, "stream completed",
		append(meta.LogFields(),
			"chunks", st.ChunkCount,
			"response_id", st.ResponseID,
		)...)
}

// callUpstream forwards the translated request and records latency to the
// first response header.
func (g *Gateway) callUpstream(ctx context.Context, req *translate.UpstreamRequest, meta *proxy.RequestMetadata, intent, initiator string) (*http.Response, error) {
	upstreamStart := time.Now()
	resp, err := g.upstream.Chat(ctx, req, upstream.RequestMeta{
		SessionID: meta.SessionID,
		Intent:    intent,
		Initiator: initiator,
	})
	latency := time.Since(upstreamStart)
	if err != nil {
		g.recordUpstreamError(latency)
		return nil, err
	}
	g.recordUpstream(resp.StatusCode, latency)
	return resp, nil
}

// decodeChatCompletion parses a non-streaming upstream body. A body that
// fails to decode is reported as an upstream fault, not a caller fault.
func decodeChatCompletion(body io.Reader) (*types.ChatCompletionResponse, error) {
	var completion types.ChatCompletionResponse
	if err := json.NewDecoder(body).Decode(&completion); err != nil {
		return nil, &upstream.Error{
			StatusCode: http.StatusBadGateway,
			Message:    "upstream returned an unreadable completion body",
			Cause:      err,
		}
	}
	return &completion, nil
}

func writeMethodNotAllowed(ctx context.Context, w http.ResponseWriter, method string) {
	errResp := types.NewInvalidRequestError(
		fmt.Sprintf("method %s not allowed, use POST", method),
		"", "method_not_allowed",
	)
	w.Header().Set("Allow", http.MethodPost)
	if err := proxy.WriteErrorResponse(w, errResp); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}
