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

// Responses handles POST /v1/responses. Streaming requests produce named
// SSE events in the responses grammar; non-streaming requests return a
// single response object assembled from the upstream completion.
func (g *Gateway) Responses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	const endpoint = "responses"

	if r.Method != http.MethodPost {
		writeMethodNotAllowed(ctx, w, r.Method)
		return
	}

	req, err := proxy.ParseResponsesRequest(r, g.maxBodyBytes)
	if err != nil {
		writeError(ctx, w, err)
		g.recordRequest(endpoint, "", "invalid", start)
		return
	}

	meta := proxy.NewRequestMetadata(r, endpoint)
	meta.Model = req.Model
	meta.ResolvedModel = g.resolver.Resolve(req.Model)
	meta.Stream = req.Stream

	slog.InfoContext(ctx, "responses request", meta.LogFields()...)

	messages := translate.RepairHistory(responsesMessages(req))
	upReq := translate.BuildUpstreamRequest(meta.ResolvedModel, messages, translate.RequestOptions{
		MaxTokens:   req.MaxOutputTokens,
		Temperature: req.Temperature,
		Stream:      req.Stream,
		Tools:       translate.NormalizeTools(req.Tools),
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
		proxy.SetSSEHeaders(w)
		g.streamStarted()
		defer g.streamFinished()

		st := stream.NewState(newID("resp_"), newID("msg_"))
		em := stream.NewResponsesEmitter(w, st, meta.ResolvedModel, meta.SessionID, g.usage, g.streamObserver())
		if err := stream.Run(ctx, resp.Body, em, st); err != nil {
			slog.WarnContext(ctx, "stream ended with error",
				append(meta.LogFields(), "chunks", st.ChunkCount, "error", err)...)
			return
		}
		slog.InfoContext(ctx, "stream completed",
			append(meta.LogFields(),
				"chunks", st.ChunkCount,
				"response_id", st.ResponseID,
			)...)
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

	obj := responseFromCompletion(completion, meta.ResolvedModel)
	if err := proxy.WriteJSONResponse(w, http.StatusOK, obj); err != nil {
		slog.ErrorContext(ctx, "failed to write response",
			append(meta.LogFields(), "error", err)...)
	}
	g.recordRequest(endpoint, meta.ResolvedModel, "ok", start)
}

// responseFromCompletion assembles a completed response object from a
// non-streaming upstream completion. Message content and tool calls each
// become their own output item.
func responseFromCompletion(completion *types.ChatCompletionResponse, model string) *types.ResponseObject {
	obj := &types.ResponseObject{
		ID:        newID("resp_"),
		Object:    "response",
		CreatedAt: time.Now().Unix(),
		Status:    "completed",
		Model:     model,
		Output:    []types.OutputItem{},
		Usage: &types.ResponseUsage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
			TotalTokens:  completion.Usage.TotalTokens,
		},
	}
	if completion.Created != 0 {
		obj.CreatedAt = completion.Created
	}

	for _, choice := range completion.Choices {
		if text := contentText(choice.Message.Content); text != "" {
			obj.Output = append(obj.Output, types.OutputItem{
				ID:     newID("msg_"),
				Type:   "message",
				Status: "completed",
				Role:   "assistant",
				Content: []types.ContentPart{{
					Type: "output_text",
					Text: text,
				}},
			})
		}
		for _, tc := range choice.Message.ToolCalls {
			obj.Output = append(obj.Output, types.OutputItem{
				ID:        newID("fc_"),
				Type:      "function_call",
				Status:    "completed",
				CallID:    tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}
	return obj
}
