// Package searchdocs implements the internal document search tool. It scores
// a small in-process knowledge base against the query and returns the top
// matching chunks with provenance, ready for citation formatting.
package searchdocs

import (
	"context"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/opsgraph/providers/tool"
)

// Name is the registry name of this tool.
const Name = "search_docs"

// maxResults caps how many chunks a single search returns.
const maxResults = 3

// Input holds the free-text search query.
type Input struct {
	Query string `json:"query"`
}

// Doc is one knowledge-base chunk returned by a search.
type Doc struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Output carries the ranked search results. An empty Results slice is a
// valid outcome meaning nothing matched.
type Output struct {
	Results []Doc `json:"results"`
}

// Store is an in-memory document store. Documents whose text is HTML are
// normalized to markdown at load time so downstream prompts and citations
// work with plain text.
type Store struct {
	docs []Doc
}

// NewStore builds a store from the given documents, normalizing any
// HTML-sourced text to markdown.
func NewStore(docs []Doc) *Store {
	normalized := make([]Doc, 0, len(docs))
	for _, doc := range docs {
		doc.Text = normalizeText(doc.Text)
		normalized = append(normalized, doc)
	}
	return &Store{docs: normalized}
}

// NewDefaultStore builds a store with the built-in mock knowledge base.
func NewDefaultStore() *Store {
	return NewStore(mockDocs)
}

// Search scores every document by naive term overlap with the query and
// returns the top matches. Documents with no overlapping terms are excluded.
func (store *Store) Search(_ context.Context, input Input) (Output, error) {
	queryTerms := strings.Fields(strings.ToLower(input.Query))

	type scoredDoc struct {
		doc     Doc
		overlap int
	}

	scored := make([]scoredDoc, 0, len(store.docs))
	for _, doc := range store.docs {
		textLower := strings.ToLower(doc.Text)
		overlap := 0
		for _, term := range queryTerms {
			if strings.Contains(textLower, term) {
				overlap++
			}
		}
		if overlap > 0 {
			scored = append(scored, scoredDoc{doc: doc, overlap: overlap})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].overlap > scored[b].overlap
	})

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	results := make([]Doc, 0, len(scored))
	for _, entry := range scored {
		results = append(results, entry.doc)
	}

	return Output{Results: results}, nil
}

// NewSearchDocsTool returns the document search tool backed by the given
// store. A nil store uses the built-in mock knowledge base.
func NewSearchDocsTool(store *Store) *tool.Tool[Input, Output] {
	if store == nil {
		store = NewDefaultStore()
	}
	return tool.NewTool(Name, store.Search,
		tool.WithDescription("Search internal documents and the knowledge base. Returns top matching chunks with citations."),
	)
}

// normalizeText converts HTML-looking content to markdown; plain text passes
// through unchanged.
func normalizeText(text string) string {
	if !strings.Contains(text, "</") && !strings.Contains(text, "/>") {
		return text
	}
	markdown, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(markdown)
}

// mockDocs is the built-in knowledge base used in mock mode and tests.
var mockDocs = []Doc{
	{
		ID:     "DOC-001",
		Text:   "Refund Policy: Full refunds are available within 30 days of purchase for all standard products. Enterprise licenses require VP approval for refunds after the 15-day cooling period.",
		Source: "Policy Manual v4.2, Section 3.1",
		Score:  0.95,
	},
	{
		ID:     "DOC-002",
		Text:   "Escalation Matrix: Priority 1 (Critical) issues must be escalated to the on-call manager within 1 hour. Priority 2 (High) within 4 hours. All compliance-related queries go directly to the Legal team.",
		Source: "Ops Handbook, Chapter 7",
		Score:  0.88,
	},
	{
		ID:     "DOC-003",
		Text:   "CPQ Guidelines: All quotes above $10,000 require manager approval. Discounts exceeding 20% need VP sign-off. Product bundles must follow the approved combination matrix.",
		Source: "Sales Ops Guide v2.1, Section 5",
		Score:  0.91,
	},
	{
		ID:     "DOC-004",
		Text:   "<p>HIPAA Compliance: Any request involving <b>Protected Health Information (PHI)</b> must be routed to the compliance team. AI-generated responses about medical data require human review before sending.</p>",
		Source: "Compliance Framework v3.0, Section 2.4",
		Score:  0.97,
	},
	{
		ID:     "DOC-005",
		Text:   "SLA Definitions: Standard support: 24h response. Premium: 4h response, 8h resolution. Enterprise: 1h response, 4h resolution. Breach penalties apply per contract terms.",
		Source: "Service Agreements, Appendix A",
		Score:  0.85,
	},
}
