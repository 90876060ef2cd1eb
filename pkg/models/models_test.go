package models

import (
	"sort"
	"testing"
)

func TestResolve(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name      string
		requested string
		want      string
	}{
		{"current identifier maps to itself", "gpt-4.1", "gpt-4.1"},
		{"retired identifier maps to replacement", "gpt-4", "gpt-4o"},
		{"legacy completion model remapped", "text-davinci-003", "gpt-4o-mini"},
		{"o1 family collapses to o3-mini", "o1-preview", "o3-mini"},
		{"case insensitive lookup", "GPT-4-Turbo", "gpt-4o"},
		{"unknown passes through unchanged", "some-future-model", "some-future-model"},
		{"empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.requested); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.requested, got, tt.want)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	r := NewResolver()

	if !r.Known("gpt-4o") {
		t.Error("Known(gpt-4o) = false")
	}
	if !r.Known("GPT-4") {
		t.Error("Known must be case-insensitive")
	}
	if r.Known("some-future-model") {
		t.Error("Known(some-future-model) = true")
	}
}

func TestResolverWithOverrides(t *testing.T) {
	r := NewResolverWithOverrides(map[string]string{
		"My-Alias": "gpt-4.1",
		"gpt-4":    "gpt-4.1", // replaces the built-in remap
	})

	if got := r.Resolve("my-alias"); got != "gpt-4.1" {
		t.Errorf("override alias resolved to %q", got)
	}
	if got := r.Resolve("gpt-4"); got != "gpt-4.1" {
		t.Errorf("override must shadow builtin: got %q", got)
	}
	// Untouched builtin entries survive the overlay.
	if got := r.Resolve("o1"); got != "o3-mini" {
		t.Errorf("builtin entry lost after overlay: got %q", got)
	}
	// The shared default table must not be mutated.
	if got := NewResolver().Resolve("gpt-4"); got != "gpt-4o" {
		t.Errorf("default table mutated by overrides: got %q", got)
	}
}

func TestResolverWithAliasesReplacesTable(t *testing.T) {
	r := NewResolverWithAliases(map[string]string{"only": "only"})

	if got := r.Resolve("gpt-4"); got != "gpt-4" {
		t.Errorf("replaced table must not contain builtins: got %q", got)
	}
	if !r.Known("ONLY") {
		t.Error("supplied keys must be normalized to lower case")
	}
}

func TestCatalog(t *testing.T) {
	catalog := NewResolver().Catalog()

	if catalog.Object != "list" {
		t.Errorf("Object = %q, want list", catalog.Object)
	}
	if len(catalog.Data) == 0 {
		t.Fatal("catalog is empty")
	}

	ids := make(map[string]Model, len(catalog.Data))
	for _, m := range catalog.Data {
		if ids[m.ID].ID != "" {
			t.Errorf("duplicate catalog entry %q", m.ID)
		}
		ids[m.ID] = m
		if m.Object != "model" {
			t.Errorf("%s: Object = %q, want model", m.ID, m.Object)
		}
	}

	// Canonical identifiers are advertised, retired aliases are not.
	if _, ok := ids["gpt-4o"]; !ok {
		t.Error("gpt-4o missing from catalog")
	}
	if _, ok := ids["gpt-4-turbo"]; ok {
		t.Error("retired alias gpt-4-turbo must not be advertised")
	}

	if got := ids["claude-sonnet-4"].OwnedBy; got != "anthropic" {
		t.Errorf("claude-sonnet-4 owned_by = %q, want anthropic", got)
	}
	if got := ids["gemini-2.5-pro"].OwnedBy; got != "google" {
		t.Errorf("gemini-2.5-pro owned_by = %q, want google", got)
	}
	if got := ids["gpt-4o"].OwnedBy; got != "openai" {
		t.Errorf("gpt-4o owned_by = %q, want openai", got)
	}

	if !sort.SliceIsSorted(catalog.Data, func(i, j int) bool {
		return catalog.Data[i].ID < catalog.Data[j].ID
	}) {
		t.Error("catalog entries are not sorted by id")
	}
}
