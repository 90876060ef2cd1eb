package models

import "sort"

// Model describes one entry in the /v1/models catalog.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the OpenAI-compatible list envelope.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// catalogCreated is a fixed timestamp for catalog entries. The catalog is
// static per deployment, so a stable value keeps responses cacheable.
const catalogCreated int64 = 1715367049

// ownerFor attributes a model identifier to its providing vendor.
func ownerFor(id string) string {
	switch {
	case hasAnyPrefix(id, "claude"):
		return "anthropic"
	case hasAnyPrefix(id, "gemini"):
		return "google"
	default:
		return "openai"
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

// Catalog returns the static model catalog derived from the resolver's
// alias table. Only canonical identifiers (entries that map to themselves)
// are listed; retired aliases resolve but are not advertised.
func (r *Resolver) Catalog() ModelList {
	seen := make(map[string]bool)
	list := ModelList{Object: "list"}

	for name, target := range r.aliases {
		if name != target || seen[target] {
			continue
		}
		seen[target] = true
		list.Data = append(list.Data, Model{
			ID:      target,
			Object:  "model",
			Created: catalogCreated,
			OwnedBy: ownerFor(target),
		})
	}

	sort.Slice(list.Data, func(i, j int) bool {
		return list.Data[i].ID < list.Data[j].ID
	})

	return list
}
