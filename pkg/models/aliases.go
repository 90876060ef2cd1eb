package models

import (
	"log/slog"
	"strings"
)

// Resolver maps requested model identifiers to upstream-accepted identifiers.
//
// The table contains both "current name -> self" entries and
// "retired name -> replacement" entries. Lookups are case-insensitive.
// Unknown identifiers pass through unchanged: the upstream may support
// models that are not yet in the table, so rejection here would be wrong.
type Resolver struct {
	aliases map[string]string
}

// defaultAliases is the alias table shipped with the proxy. Keys must be
// lower case. Retired identifiers map to their configured replacements;
// current identifiers map to themselves so the catalog can be derived from
// the same table.
var defaultAliases = map[string]string{
	// Current identifiers.
	"gpt-4o":              "gpt-4o",
	"gpt-4o-mini":         "gpt-4o-mini",
	"gpt-4.1":             "gpt-4.1",
	"gpt-4.1-mini":        "gpt-4.1-mini",
	"gpt-5":               "gpt-5",
	"gpt-5-mini":          "gpt-5-mini",
	"o3-mini":             "o3-mini",
	"o4-mini":             "o4-mini",
	"claude-sonnet-4":     "claude-sonnet-4",
	"claude-3.7-sonnet":   "claude-3.7-sonnet",
	"claude-3.5-sonnet":   "claude-3.5-sonnet",
	"gemini-2.5-pro":      "gemini-2.5-pro",
	"gemini-2.0-flash":    "gemini-2.0-flash",

	// Retired or legacy identifiers and their replacements.
	"gpt-4":                  "gpt-4o",
	"gpt-4-turbo":            "gpt-4o",
	"gpt-3.5-turbo":          "gpt-4o-mini",
	"gpt-35-turbo":           "gpt-4o-mini",
	"text-davinci-003":       "gpt-4o-mini",
	"o1":                     "o3-mini",
	"o1-mini":                "o3-mini",
	"o1-preview":             "o3-mini",
	"claude-3-opus":          "claude-3.5-sonnet",
	"claude-3-sonnet":        "claude-3.5-sonnet",
	"claude-3-haiku":         "claude-3.5-sonnet",
	"gemini-1.5-pro":         "gemini-2.5-pro",
	"gemini-flash-preview":   "gemini-2.0-flash",
}

// NewResolver creates a resolver over the default alias table.
func NewResolver() *Resolver {
	return NewResolverWithAliases(defaultAliases)
}

// NewResolverWithAliases creates a resolver over a caller-supplied table.
// Keys are lower-cased on the way in so lookups stay case-insensitive even
// if the supplied table is not normalized.
func NewResolverWithAliases(aliases map[string]string) *Resolver {
	table := make(map[string]string, len(aliases))
	for k, v := range aliases {
		table[strings.ToLower(k)] = v
	}
	return &Resolver{aliases: table}
}

// NewResolverWithOverrides creates a resolver over the default table with
// caller-supplied entries layered on top. Existing entries are replaced,
// new ones added; the built-in table is never mutated.
func NewResolverWithOverrides(overrides map[string]string) *Resolver {
	table := make(map[string]string, len(defaultAliases)+len(overrides))
	for k, v := range defaultAliases {
		table[k] = v
	}
	for k, v := range overrides {
		table[strings.ToLower(k)] = v
	}
	return &Resolver{aliases: table}
}

// Resolve maps a requested model identifier to the upstream identifier.
// Unknown identifiers are returned unchanged and logged for diagnostics;
// they are never rejected.
func (r *Resolver) Resolve(requested string) string {
	if resolved, ok := r.aliases[strings.ToLower(requested)]; ok {
		return resolved
	}

	slog.Debug("model not in alias table, passing through",
		"model", requested,
	)
	return requested
}

// Known reports whether the identifier is present in the alias table.
func (r *Resolver) Known(requested string) bool {
	_, ok := r.aliases[strings.ToLower(requested)]
	return ok
}
