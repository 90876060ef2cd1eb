// Package auth manages upstream credentials: the GitHub OAuth token
// persisted on disk, the short-lived Copilot API token exchanged from it,
// and a file watcher that picks up out-of-band token updates (for example a
// login performed by another process) without restarting the proxy.
package auth
