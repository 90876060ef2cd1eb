// Package logging configures the process-wide slog logger: JSON or text
// output, level selection, and credential redaction so GitHub and
// Copilot tokens never land in log sinks. Context helpers carry
// request and session identifiers so every log line in a request's
// lifetime shares the same correlation fields.
package logging
