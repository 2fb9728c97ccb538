package result

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const tableSchema = `{
  "type": "object",
  "required": ["kind", "headers", "rows"],
  "properties": {
    "kind": {"enum": ["table"]},
    "title": {"type": "string"},
    "headers": {"type": "array", "items": {"type": "string"}},
    "rows": {
      "type": "array",
      "items": {"type": "array", "items": {"type": ["string", "number", "null"]}}
    }
  }
}`

const summarySchema = `{
  "type": "object",
  "required": ["kind", "title", "htmlContent"],
  "properties": {
    "kind": {"enum": ["summary"]},
    "title": {"type": "string"},
    "htmlContent": {"type": "string"},
    "metrics": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "value"],
        "properties": {
          "label": {"type": "string"},
          "value": {"type": ["string", "number"]},
          "iconKey": {"type": "string"}
        }
      }
    }
  }
}`

const suggestionsSchema = `{
  "type": "object",
  "required": ["suggestions", "summary"],
  "properties": {
    "suggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "description", "priority", "category", "recommendedAction"],
        "properties": {
          "id": {"type": ["string", "number"]},
          "title": {"type": "string"},
          "description": {"type": "string"},
          "priority": {"enum": ["critical", "high", "medium", "low"]},
          "category": {"enum": ["financial", "timeline", "risk", "opportunity", "governance"]},
          "recommendedAction": {"type": "string"},
          "expectedImpact": {"type": "string"},
          "sources": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "summary": {
      "type": "object",
      "required": ["total_suggestions"],
      "properties": {
        "total_suggestions": {"type": "integer", "minimum": 0},
        "critical_count": {"type": "integer", "minimum": 0},
        "main_concerns": {"type": "array", "items": {"type": "string"}},
        "analysis_timestamp": {"type": "string"}
      }
    }
  }
}`

const searchSchema = `{
  "type": "object",
  "required": ["results", "total", "query_intent"],
  "properties": {
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "relevanceScore"],
        "properties": {
          "id": {"type": ["string", "number"]},
          "title": {"type": "string"},
          "docType": {"type": "string"},
          "excerpt": {"type": "string"},
          "project": {"type": "string"},
          "area": {"type": "string"},
          "date": {"type": "string"},
          "relevanceScore": {"type": "number", "minimum": 0, "maximum": 1},
          "tags": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "total": {"type": "integer", "minimum": 0},
    "query_intent": {"type": "string"}
  }
}`

// Schemas returns the JSON Schema source for each structured kind.
func Schemas() map[Kind]string {
	return map[Kind]string{
		KindReport:      `{"oneOf": [` + tableSchema + `, ` + summarySchema + `]}`,
		KindSuggestions: suggestionsSchema,
		KindSearch:      searchSchema,
	}
}

// Validator checks parsed completions against the compiled schemas.
type Validator struct {
	schemas map[Kind]*gojsonschema.Schema
}

// NewValidator compiles every schema returned by Schemas.
func NewValidator() (*Validator, error) {
	v := &Validator{schemas: make(map[Kind]*gojsonschema.Schema)}
	for kind, src := range Schemas() {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", kind, err)
		}
		v.schemas[kind] = schema
	}
	return v, nil
}

// Validate returns the schema violations of data, or nil when it conforms.
// Kinds without a schema always conform.
func (v *Validator) Validate(kind Kind, data []byte) []string {
	schema, ok := v.schemas[kind]
	if !ok {
		return nil
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return []string{err.Error()}
	}
	if res.Valid() {
		return nil
	}
	errs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		errs = append(errs, e.String())
	}
	return errs
}
