package translate

import (
	"encoding/json"
	"log/slog"
)

// Callers declare tools in several shapes that have accumulated across
// OpenAI API revisions. Each raw entry is resolved into exactly one of
// these variants at normalization time so nothing downstream re-inspects
// dynamic JSON.
type toolVariant int

const (
	// toolFunction is the canonical {type:"function", function:{...}} shape.
	toolFunction toolVariant = iota

	// toolCustom is the {type:"custom", custom:{...}} variant, mapped onto
	// the canonical shape.
	toolCustom

	// toolBare is the legacy {name, description?, parameters?} shape with
	// no wrapping object.
	toolBare

	// toolUnsupported covers hosted tool types the upstream cannot run
	// (search, code interpreter, file search). Skipped silently.
	toolUnsupported

	// toolUnrecognized is the catch-all for shapes we cannot classify.
	// Skipped with a diagnostic.
	toolUnrecognized
)

// rawTool is the superset decode target for all recognized declarations.
type rawTool struct {
	Type     string         `json:"type"`
	Function *rawFunction   `json:"function"`
	Custom   *rawFunction   `json:"custom"`
	Name     string         `json:"name"`
	Desc     string         `json:"description"`
	Params   map[string]any `json:"parameters"`
	Strict   *bool          `json:"strict"`
}

type rawFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Strict      *bool          `json:"strict"`
}

// unsupportedToolTypes are hosted tools with no upstream equivalent.
var unsupportedToolTypes = map[string]bool{
	"web_search":           true,
	"web_search_preview":   true,
	"file_search":          true,
	"code_interpreter":     true,
	"computer_use_preview": true,
}

// classify resolves a decoded entry into one variant.
func (t *rawTool) classify() toolVariant {
	switch {
	case unsupportedToolTypes[t.Type]:
		return toolUnsupported
	case t.Type == "function" && t.Function != nil:
		return toolFunction
	case t.Type == "custom" && t.Custom != nil:
		return toolCustom
	case t.Type == "" && t.Name != "":
		return toolBare
	case t.Type == "function" && t.Name != "":
		// Flattened variant: type present but fields at the top level.
		return toolBare
	default:
		return toolUnrecognized
	}
}

// NormalizeTools canonicalizes caller-supplied tool declarations.
//
// Entries missing a non-empty name are skipped with a diagnostic; hosted
// tool types the upstream cannot run are skipped silently. Malformed JSON
// degrades to "tool omitted" rather than failing the request.
//
// Returns nil when no input was given or everything was filtered out, so
// callers can omit the tools field entirely instead of sending [].
func NormalizeTools(raw []json.RawMessage) []ToolDefinition {
	if len(raw) == 0 {
		return nil
	}

	var tools []ToolDefinition
	for i, entry := range raw {
		var t rawTool
		if err := json.Unmarshal(entry, &t); err != nil {
			slog.Warn("skipping malformed tool entry",
				"index", i,
				"error", err,
			)
			continue
		}

		var fn *rawFunction
		switch t.classify() {
		case toolFunction:
			fn = t.Function
		case toolCustom:
			fn = t.Custom
		case toolBare:
			fn = &rawFunction{
				Name:        t.Name,
				Description: t.Desc,
				Parameters:  t.Params,
				Strict:      t.Strict,
			}
		case toolUnsupported:
			continue
		default:
			slog.Warn("skipping unrecognized tool shape",
				"index", i,
				"type", t.Type,
			)
			continue
		}

		if fn.Name == "" {
			slog.Warn("skipping tool with missing name",
				"index", i,
				"type", t.Type,
			)
			continue
		}

		params := fn.Parameters
		if params == nil {
			params = map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			}
		}

		tools = append(tools, ToolDefinition{
			Type: "function",
			Function: FunctionDefinition{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  params,
				Strict:      fn.Strict,
			},
		})
	}

	if len(tools) == 0 {
		return nil
	}
	return tools
}
