package handlers

import (
	"fmt"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
	"github.com/youssefadel94/github-copilot-proxy/pkg/translate"
)

// chatMessages converts caller messages into the upstream wire shape.
// Explicit-null content on assistant tool-call turns survives as a nil
// pointer; multimodal content arrays collapse to their text parts.
func chatMessages(msgs []types.Message) []translate.ChatMessage {
	out := make([]translate.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := translate.ChatMessage{
			Role:       m.Role,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		if m.Content != nil {
			cm.Content = translate.StringPtr(contentText(m.Content))
		}
		for _, tc := range m.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, translate.ToolCall{
				ID:   tc.ID,
				Type: tc.Type,
				Function: translate.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out = append(out, cm)
	}
	return out
}

// contentText flattens message content to plain text. Content arrives as
// a string, an array of typed parts, or null (handled by the caller).
func contentText(content interface{}) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		return joinTextParts(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// joinTextParts extracts the text parts of a multimodal content array.
// Non-text parts (image_url and friends) are dropped; the upstream chat
// endpoint only accepts text.
func joinTextParts(parts []interface{}) string {
	var out string
	for _, part := range parts {
		pm, ok := part.(map[string]interface{})
		if !ok {
			continue
		}
		typ, _ := pm["type"].(string)
		if typ != "text" && typ != "input_text" && typ != "output_text" {
			continue
		}
		text, ok := pm["text"].(string)
		if !ok {
			continue
		}
		out += text
	}
	return out
}

// promptText extracts the prompt from a legacy completion request. The
// prompt is a string or an array of strings; only the first array element
// is used.
func promptText(prompt interface{}) string {
	switch v := prompt.(type) {
	case string:
		return v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				return s
			}
		}
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// responsesMessages converts a responses-API input into a chat history.
// Instructions become a leading system message. A string input becomes a
// single user message; a structured input list contributes one message
// per item in order.
func responsesMessages(req *types.ResponsesRequest) []translate.ChatMessage {
	var out []translate.ChatMessage
	if req.Instructions != "" {
		out = append(out, translate.ChatMessage{
			Role:    "system",
			Content: translate.StringPtr(req.Instructions),
		})
	}

	switch v := req.Input.(type) {
	case string:
		out = append(out, translate.ChatMessage{
			Role:    "user",
			Content: translate.StringPtr(v),
		})
	case []interface{}:
		for _, item := range v {
			im, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			role, _ := im["role"].(string)
			if role == "" {
				role = "user"
			}
			content, ok := im["content"]
			if !ok || content == nil {
				continue
			}
			out = append(out, translate.ChatMessage{
				Role:    role,
				Content: translate.StringPtr(contentText(content)),
			})
		}
	}
	return out
}
