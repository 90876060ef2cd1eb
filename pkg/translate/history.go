package translate

import (
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// maxOrphanSummaryLen caps the rewritten content of an orphaned tool result.
const maxOrphanSummaryLen = 200

// RepairHistory fixes tool-call/tool-result pairing violations.
//
// Some upstream models reject a tool-role message whose tool_call_id was
// never emitted by an assistant turn in the submitted history. Callers hit
// this after truncating old turns out of a transcript. RepairHistory walks
// the messages once, accumulating every tool-call id emitted by assistant
// messages; a tool-role message referencing an id outside that set is
// rewritten in place as a plain user message summarizing the tool output.
//
// The pass is O(n), preserves the order of all messages, and is idempotent:
// running it on its own output changes nothing, because rewritten messages
// are no longer tool-role.
func RepairHistory(messages []ChatMessage) []ChatMessage {
	seen := make(map[string]bool)
	repaired := make([]ChatMessage, 0, len(messages))

	for _, msg := range messages {
		switch {
		case msg.Role == "assistant" && len(msg.ToolCalls) > 0:
			for _, call := range msg.ToolCalls {
				seen[call.ID] = true
			}
			repaired = append(repaired, msg)

		case msg.Role == "tool" && !seen[msg.ToolCallID]:
			slog.Warn("rewriting orphaned tool result",
				"tool_call_id", msg.ToolCallID,
			)
			repaired = append(repaired, orphanToUserMessage(msg))

		default:
			repaired = append(repaired, msg)
		}
	}

	return repaired
}

// orphanToUserMessage rewrites an orphaned tool result as a user message
// carrying a bracketed, length-capped summary of the original output.
func orphanToUserMessage(msg ChatMessage) ChatMessage {
	content := msg.ContentText()
	if len(content) > maxOrphanSummaryLen {
		// Back up to a rune boundary so the cut never splits a
		// multibyte character.
		cut := maxOrphanSummaryLen
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + "..."
	}

	summary := fmt.Sprintf("[Tool result for %s]: %s", msg.ToolCallID, content)
	return ChatMessage{
		Role:    "user",
		Content: StringPtr(summary),
	}
}
