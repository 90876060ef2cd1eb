package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy"
	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
	"github.com/youssefadel94/github-copilot-proxy/pkg/stream"
	"github.com/youssefadel94/github-copilot-proxy/pkg/translate"
	"github.com/youssefadel94/github-copilot-proxy/pkg/upstream"
)

// Completions handles POST /v1/completions, the legacy text-completion
// endpoint. The prompt becomes a single-turn chat request upstream; the
// reply is folded back into the legacy shape. Streaming requests use the
// chunk grammar, same as chat completions.
func (g *Gateway) Completions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	const endpoint = "completions"

	if r.Method != http.MethodPost {
		writeMethodNotAllowed(ctx, w, r.Method)
		return
	}

	req, err := proxy.ParseCompletionRequest(r, g.maxBodyBytes)
	if err != nil {
		writeError(ctx, w, err)
		g.recordRequest(endpoint, "", "invalid", start)
		return
	}

	meta := proxy.NewRequestMetadata(r, endpoint)
	meta.Model = req.Model
	meta.ResolvedModel = g.resolver.Resolve(req.Model)
	meta.Stream = req.Stream

	slog.InfoContext(ctx, "completion request", meta.LogFields()...)

	prompt := promptText(req.Prompt)
	if req.Suffix != "" {
		prompt += req.Suffix
	}
	messages := []translate.ChatMessage{{
		Role:    "user",
		Content: translate.StringPtr(prompt),
	}}

	upReq := translate.BuildUpstreamRequest(meta.ResolvedModel, messages, translate.RequestOptions{
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      req.Stream,
		Stop:        req.Stop,
	})

	g.usage.TrackRequest(meta.SessionID)

	resp, err := g.callUpstream(ctx, upReq, meta, upstream.IntentCompletion, "user")
	if err != nil {
		slog.ErrorContext(ctx, "upstream request failed",
			append(meta.LogFields(), "error", err)...)
		writeError(ctx, w, err)
		g.recordRequest(endpoint, meta.ResolvedModel, "upstream_error", start)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if req.Stream {
		proxy.SetSSEHeaders(w)
		g.streamStarted()
		defer g.streamFinished()

		st := stream.NewState(newID("cmpl-"), "")
		em := stream.NewChunkEmitter(w, st, meta.ResolvedModel, meta.SessionID, g.usage, g.streamObserver())
		if err := stream.Run(ctx, resp.Body, em, st); err != nil {
			slog.WarnContext(ctx, "stream ended with error",
				append(meta.LogFields(), "chunks", st.ChunkCount, "error", err)...)
			return
		}
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

	legacy := legacyCompletion(completion, meta.ResolvedModel)
	if err := proxy.WriteJSONResponse(w, http.StatusOK, legacy); err != nil {
		slog.ErrorContext(ctx, "failed to write response",
			append(meta.LogFields(), "error", err)...)
	}
	g.recordRequest(endpoint, meta.ResolvedModel, "ok", start)
}

// legacyCompletion folds a chat completion into the legacy text shape.
func legacyCompletion(completion *types.ChatCompletionResponse, model string) *types.CompletionResponse {
	out := &types.CompletionResponse{
		ID:      newID("cmpl-"),
		Object:  "text_completion",
		Created: time.Now().Unix(),
		Model:   model,
		Usage:   completion.Usage,
	}
	if completion.Created != 0 {
		out.Created = completion.Created
	}
	for i, choice := range completion.Choices {
		out.Choices = append(out.Choices, types.CompletionChoice{
			Index:        i,
			Text:         contentText(choice.Message.Content),
			FinishReason: choice.FinishReason,
		})
	}
	return out
}
