package websearch

import "github.com/helixir/research-assistant-service/internal/llm"

// schemaName is the structured-output schema identifier sent to the model.
const schemaName = "research_result"

// resultSchema returns the JSON schema for the model answer. Strict structured
// output requires every property to be listed as required, so optional values
// are expressed as nullable types instead.
func resultSchema() *llm.JSONSchema {
	stringArray := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

	source := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title":              map[string]any{"type": "string"},
			"url":                map[string]any{"type": "string"},
			"host":               map[string]any{"type": "string"},
			"year":               map[string]any{"type": []any{"number", "null"}},
			"authors":            stringArray,
			"whyRelevantBullets": stringArray,
		},
		"required": []any{"title", "url", "host", "year", "authors", "whyRelevantBullets"},
	}

	theme := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"theme":               map[string]any{"type": "string"},
			"whyThisThemeMatters": map[string]any{"type": "string"},
			"sources":             map[string]any{"type": "array", "items": source},
		},
		"required": []any{"theme", "whyThisThemeMatters", "sources"},
	}

	place := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"url":  map[string]any{"type": "string"},
			"why":  map[string]any{"type": "string"},
		},
		"required": []any{"name", "url", "why"},
	}

	return &llm.JSONSchema{
		Name:   schemaName,
		Strict: true,
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"decision":              map[string]any{"type": "string", "enum": []any{"allow", "refuse"}},
				"refusalReason":         map[string]any{"type": "string"},
				"overview":              map[string]any{"type": "string"},
				"interpretationBullets": stringArray,
				"topPlaces":             map[string]any{"type": "array", "minItems": 5, "maxItems": 5, "items": place},
				"themes":                map[string]any{"type": "array", "items": theme},
				"nextSteps":             stringArray,
			},
			"required": []any{
				"decision", "refusalReason", "overview", "interpretationBullets",
				"topPlaces", "themes", "nextSteps",
			},
		},
	}
}
