package archive

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// JSON schemas enforced when reading archive records back from disk, so a
// corrupted or hand-edited file fails loudly instead of flowing into prompts.

const dailySchema = `{
	"type": "object",
	"required": ["date", "summary", "created_at"],
	"properties": {
		"date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"language": {"type": "string"},
		"summary": {"type": "string", "minLength": 1},
		"source_ref": {"type": "string"},
		"word_count": {"type": "integer", "minimum": 0},
		"created_at": {"type": "string"}
	}
}`

const weeklySchema = `{
	"type": "object",
	"required": ["week_start", "week_end", "summary", "daily_count", "created_at"],
	"properties": {
		"week_start": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"week_end": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"year": {"type": "integer"},
		"week": {"type": "integer", "minimum": 1, "maximum": 53},
		"summary": {"type": "string", "minLength": 1},
		"daily_count": {"type": "integer", "minimum": 1, "maximum": 7},
		"created_at": {"type": "string"}
	}
}`

const monthlySchema = `{
	"type": "object",
	"required": ["month", "month_start", "month_end", "summary", "daily_count", "created_at"],
	"properties": {
		"month": {"type": "string", "pattern": "^\\d{4}-\\d{2}$"},
		"month_start": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"month_end": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"summary": {"type": "string", "minLength": 1},
		"daily_count": {"type": "integer", "minimum": 1, "maximum": 31},
		"created_at": {"type": "string"}
	}
}`

// validateRecord checks raw JSON against a schema before unmarshaling
func validateRecord(schema string, data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		return fmt.Errorf("invalid archive record: %v", result.Errors())
	}

	return nil
}
