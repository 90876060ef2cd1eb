package upstream

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/youssefadel94/github-copilot-proxy/pkg/translate"
)

// Client-identity strings the upstream uses for product attribution. The
// values are opaque pass-throughs; the upstream validates their presence,
// not their meaning.
const (
	editorVersion       = "vscode/1.95.3"
	editorPluginVersion = "copilot-chat/0.22.4"
	userAgent           = "GitHubCopilotChat/0.22.4"
	integrationID       = "vscode-chat"
)

// Intent tags distinguishing conversational from completion-style calls.
const (
	IntentConversation = "conversation-panel"
	IntentCompletion   = "copilot-panel"
)

var (
	machineIDOnce sync.Once
	machineID     string
)

// processMachineID returns a stable per-process machine identifier.
func processMachineID() string {
	machineIDOnce.Do(func() {
		machineID = uuid.NewString()
	})
	return machineID
}

// RequestMeta carries the per-request identity values attached to every
// upstream call.
type RequestMeta struct {
	// SessionID identifies the logical caller session.
	SessionID string

	// Intent distinguishes conversational vs completion-style calls.
	Intent string

	// Initiator is "user" or "agent" depending on history content.
	Initiator string
}

// InitiatorFor derives the X-Initiator value from a message history:
// "agent" when the history carries assistant or tool turns, else "user".
func InitiatorFor(messages []translate.ChatMessage) string {
	for _, msg := range messages {
		if msg.Role == "assistant" || msg.Role == "tool" {
			return "agent"
		}
	}
	return "user"
}

// setHeaders attaches the full upstream header set: a fresh per-request
// trace id, the stable machine id, the per-session id, the client-identity
// strings, the integration id, and the intent tag.
func setHeaders(req *http.Request, token string, meta RequestMeta) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	req.Header.Set("X-Request-Id", uuid.NewString())
	req.Header.Set("VScode-MachineId", processMachineID())
	req.Header.Set("VScode-SessionId", meta.SessionID)

	req.Header.Set("Editor-Version", editorVersion)
	req.Header.Set("Editor-Plugin-Version", editorPluginVersion)
	req.Header.Set("Copilot-Integration-Id", integrationID)

	intent := meta.Intent
	if intent == "" {
		intent = IntentConversation
	}
	req.Header.Set("Openai-Intent", intent)

	initiator := meta.Initiator
	if initiator == "" {
		initiator = "user"
	}
	req.Header.Set("X-Initiator", initiator)
}
