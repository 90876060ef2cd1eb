package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor scrubs credentials from log attributes. The gateway handles
// two token shapes: GitHub OAuth tokens (gho_/ghu_/ghp_ prefixes) and
// Copilot session tokens (semicolon-delimited "tid=..." blobs), plus
// generic Bearer headers.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	specs := []struct {
		regex       string
		replacement string
	}{
		// GitHub tokens
		{`\bgh[opus]_[A-Za-z0-9]{8,}\b`, "gh*_***"},
		// Copilot session tokens
		{`\btid=[A-Za-z0-9]+;[^\s"]+`, "tid=***"},
		// Bearer headers
		{`Bearer\s+[A-Za-z0-9\-._~+/;=]+`, "Bearer ***"},
		// Legacy "Authorization: token <x>" headers
		{`token\s+gh[opus]_[A-Za-z0-9]+`, "token ***"},
	}

	r := &Redactor{}
	for _, s := range specs {
		r.patterns = append(r.patterns, &redactPattern{
			regex:       regexp.MustCompile(s.regex),
			replacement: s.replacement,
		})
	}
	return r
}

// RedactString scrubs credential material from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	redacted := value
	for _, p := range r.patterns {
		redacted = p.regex.ReplaceAllString(redacted, p.replacement)
	}
	return redacted
}

// RedactAttr scrubs a single slog attribute. Values under sensitive
// keys are replaced wholesale; other string values pass through the
// pattern scrub.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, redactValue(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	}
	return a
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range []string{
		"token", "secret", "password", "authorization", "api_key", "apikey",
	} {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// redactValue keeps a short prefix so operators can tell tokens apart.
func redactValue(v string) string {
	if len(v) <= 4 {
		return "***"
	}
	return v[:4] + "***"
}
