package parse

import (
	"testing"
)

type decision struct {
	Intent      string   `json:"intent"`
	Tools       []string `json:"required_tools"`
	QualityTier int      `json:"quality_tier"`
}

func TestParseStringAsValidJSON(t *testing.T) {
	content := `{"intent": "qa", "required_tools": ["search_docs"], "quality_tier": 1}`

	parsed, err := ParseStringAs[decision](content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Intent != "qa" {
		t.Errorf("expected intent qa, got %q", parsed.Intent)
	}
	if len(parsed.Tools) != 1 || parsed.Tools[0] != "search_docs" {
		t.Errorf("unexpected tools: %v", parsed.Tools)
	}
	if parsed.QualityTier != 1 {
		t.Errorf("expected tier 1, got %d", parsed.QualityTier)
	}
}

func TestParseStringAsCodeFenced(t *testing.T) {
	content := "```json\n{\"intent\": \"compliance\", \"quality_tier\": 2}\n```"

	parsed, err := ParseStringAs[decision](content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Intent != "compliance" {
		t.Errorf("expected intent compliance, got %q", parsed.Intent)
	}
}

func TestParseStringAsRepairsMalformedJSON(t *testing.T) {
	// Single quotes and a trailing comma, both common in model output.
	content := `{'intent': 'action', 'quality_tier': 0,}`

	parsed, err := ParseStringAs[decision](content)
	if err != nil {
		t.Fatalf("expected repair to succeed, got: %v", err)
	}
	if parsed.Intent != "action" {
		t.Errorf("expected intent action, got %q", parsed.Intent)
	}
}

func TestParseStringAsPlainTextFails(t *testing.T) {
	_, err := ParseStringAs[decision]("I think the intent is qa.")
	if err == nil {
		t.Fatal("expected an error for non-JSON content")
	}
}
