package searchdocs

import (
	"context"
	"strings"
	"testing"
)

func TestSearchRanksOverlappingDocs(t *testing.T) {
	store := NewDefaultStore()

	output, err := store.Search(context.Background(), Input{Query: "refund policy for enterprise products"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(output.Results) == 0 {
		t.Fatal("expected results for a refund query")
	}
	if output.Results[0].ID != "DOC-001" {
		t.Errorf("expected the refund doc first, got %s", output.Results[0].ID)
	}
	if len(output.Results) > 3 {
		t.Errorf("results must be capped at 3, got %d", len(output.Results))
	}
}

func TestSearchNoOverlapReturnsEmpty(t *testing.T) {
	store := NewDefaultStore()

	output, err := store.Search(context.Background(), Input{Query: "zorblax frobnicate"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Results) != 0 {
		t.Errorf("expected no results, got %d", len(output.Results))
	}
}

func TestStoreNormalizesHTMLDocs(t *testing.T) {
	store := NewDefaultStore()

	output, err := store.Search(context.Background(), Input{Query: "HIPAA PHI compliance"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var hipaaDoc *Doc
	for index := range output.Results {
		if output.Results[index].ID == "DOC-004" {
			hipaaDoc = &output.Results[index]
		}
	}
	if hipaaDoc == nil {
		t.Fatal("expected the HIPAA doc in the results")
	}
	if strings.Contains(hipaaDoc.Text, "<p>") || strings.Contains(hipaaDoc.Text, "</b>") {
		t.Errorf("HTML must be normalized away, got %q", hipaaDoc.Text)
	}
	if !strings.Contains(hipaaDoc.Text, "Protected Health Information") {
		t.Errorf("normalization must keep the content, got %q", hipaaDoc.Text)
	}
}

func TestNormalizeTextLeavesPlainTextAlone(t *testing.T) {
	plain := "Standard support: 24h response. No markup here, 2 < 3."
	if got := normalizeText(plain); got != plain {
		t.Errorf("plain text must pass through unchanged, got %q", got)
	}
}
