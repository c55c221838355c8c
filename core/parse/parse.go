package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs attempts to parse model output into the target type T via
// JSON unmarshaling. Language models frequently emit JSON wrapped in code
// fences or with minor syntax defects (single quotes, trailing commas,
// unquoted keys), so on failure the content is run through jsonrepair and
// the unmarshal is retried.
//
// Example:
//
//	type Decision struct {
//	    Intent string `json:"intent"`
//	}
//
//	decision, err := parse.ParseStringAs[Decision](`{intent: 'qa'}`)
func ParseStringAs[T any](content string) (T, error) {
	var result T

	cleaned := stripCodeFences(content)

	err := json.Unmarshal([]byte(cleaned), &result)
	if err == nil {
		return result, nil
	}

	repairedJSON, repairErr := jsonrepair.JSONRepair(cleaned)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	err = json.Unmarshal([]byte(repairedJSON), &result)
	if err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (original content: %s, repaired: %s)", result, err, content, repairedJSON)
	}

	return result, nil
}

// stripCodeFences removes a surrounding markdown code fence, with or without
// a language tag, from model output.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)

	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
		// Drop the language tag line ("json", "JSON", ...).
		firstLine := strings.TrimSpace(trimmed[:newline])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}[]") {
			trimmed = trimmed[newline+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}
