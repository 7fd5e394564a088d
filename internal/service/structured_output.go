package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	rubricSchema = jsonschema.MustCompileString("rubric.schema.json", `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["section", "criteria"],
			"properties": {
				"section": {"type": "string"},
				"criteria": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["description", "score"],
						"properties": {
							"description": {"type": "string"},
							"score": {"type": "integer"}
						}
					}
				}
			}
		}
	}`)

	validitySchema = jsonschema.MustCompileString("validity.schema.json", `{
		"type": "object",
		"required": ["valid", "feedback"],
		"properties": {
			"valid": {"type": "boolean"},
			"feedback": {"type": "string", "minLength": 1}
		}
	}`)

	scoreReportSchema = jsonschema.MustCompileString("score_report.schema.json", `{
		"type": "object",
		"required": ["table", "total", "summary"],
		"properties": {
			"table": {"type": "string", "minLength": 1},
			"total": {"type": "integer", "minimum": 0},
			"summary": {"type": "string"},
			"comparison": {"type": "string"}
		}
	}`)

	qaVerdictSchema = jsonschema.MustCompileString("qa_verdict.schema.json", `{
		"type": "object",
		"required": ["valid"],
		"properties": {
			"valid": {"type": "boolean"},
			"feedback": {"type": "string"}
		}
	}`)
)

// decodeStructured strips a surrounding code fence, validates the payload against schema
// and decodes it into out. Any failure wraps errMalformedOutput.
func decodeStructured(raw string, schema *jsonschema.Schema, out any) error {
	payload := []byte(stripCodeFence(raw))

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return fmt.Errorf("%w: %v", errMalformedOutput, err)
	}

	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: %v", errMalformedOutput, err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", errMalformedOutput, err)
	}
	return nil
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}
