package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/leofalp/opsgraph/core/state"
	"github.com/leofalp/opsgraph/providers/tool"
	"github.com/leofalp/opsgraph/providers/tool/caselookup"
	"github.com/leofalp/opsgraph/providers/tool/cpqrules"
	"github.com/leofalp/opsgraph/providers/tool/searchdocs"
)

var (
	caseIDPattern  = regexp.MustCompile(`(?i)\bcase-\d+\b`)
	productPattern = regexp.MustCompile(`(?i)\bproduct\s+([a-z0-9-]+)`)
)

// Retrieval gathers grounding context for downstream answer or compliance
// steps using the registered tools. It never calls a model, so it
// contributes zero cost to the run.
//
// An empty result set is a valid outcome; the answer step decides what to
// do with it.
type Retrieval struct {
	registry *tool.Registry
}

// NewRetrieval creates the retrieval step backed by the given tool registry.
func NewRetrieval(registry *tool.Registry) *Retrieval {
	return &Retrieval{registry: registry}
}

// Execute runs every tool listed in the run's required tools that the
// registry knows, merges their results into the retrieved item list, and
// derives one citation per item. Tools the run asks for but the registry
// lacks are skipped, not fatal.
func (retrieval *Retrieval) Execute(ctx context.Context, run *state.RunState) (*state.Update, error) {
	items := []state.RetrievedItem{}
	toolsCalled := []string{}

	for _, name := range run.RequiredTools {
		registered, err := retrieval.registry.Get(name)
		if err != nil {
			continue
		}

		var found []state.RetrievedItem
		switch name {
		case searchdocs.Name:
			found, err = retrieval.searchDocs(ctx, registered, run.Input, len(items))
		case caselookup.Name:
			found, err = retrieval.lookupCase(ctx, registered, run.Input)
		case cpqrules.Name:
			found, err = retrieval.lookupCPQRules(ctx, registered, run.Input)
		default:
			continue
		}
		if err != nil {
			// A failed tool call degrades retrieval quality but does
			// not abort the run.
			continue
		}

		toolsCalled = append(toolsCalled, name)
		items = append(items, found...)
	}

	citations := make([]string, 0, len(items))
	for _, item := range items {
		citations = append(citations, fmt.Sprintf("%s %s", item.Marker, item.Source))
	}

	return &state.Update{
		RetrievedItems: items,
		Citations:      citations,
		Trace: &state.TraceRecord{
			Action:      "retrieved",
			ToolsCalled: toolsCalled,
			ItemsFound:  len(items),
			Cost:        0,
		},
	}, nil
}

func (retrieval *Retrieval) searchDocs(ctx context.Context, registered tool.GenericTool, query string, offset int) ([]state.RetrievedItem, error) {
	input, err := json.Marshal(searchdocs.Input{Query: query})
	if err != nil {
		return nil, err
	}

	raw, err := registered.Call(ctx, string(input))
	if err != nil {
		return nil, err
	}

	var output searchdocs.Output
	if err := json.Unmarshal([]byte(raw), &output); err != nil {
		return nil, err
	}

	items := make([]state.RetrievedItem, 0, len(output.Results))
	for index, doc := range output.Results {
		items = append(items, state.RetrievedItem{
			ID:     doc.ID,
			Text:   doc.Text,
			Source: doc.Source,
			Score:  doc.Score,
			Marker: fmt.Sprintf("[%d]", offset+index+1),
		})
	}
	return items, nil
}

func (retrieval *Retrieval) lookupCase(ctx context.Context, registered tool.GenericTool, userInput string) ([]state.RetrievedItem, error) {
	match := caseIDPattern.FindString(userInput)
	if match == "" {
		return nil, nil
	}
	caseID := strings.ToUpper(match)

	input, err := json.Marshal(caselookup.Input{CaseID: caseID})
	if err != nil {
		return nil, err
	}

	raw, err := registered.Call(ctx, string(input))
	if err != nil {
		return nil, err
	}

	var found caselookup.Case
	if err := json.Unmarshal([]byte(raw), &found); err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Case %s (%s): %s. Status: %s, Priority: %s. %s",
		found.ID, found.Customer, found.Subject, found.Status, found.Priority, found.Description)

	return []state.RetrievedItem{{
		ID:     found.ID,
		Text:   text,
		Source: "CRM",
		Score:  1.0,
		Marker: fmt.Sprintf("[SF-%s]", found.ID),
	}}, nil
}

func (retrieval *Retrieval) lookupCPQRules(ctx context.Context, registered tool.GenericTool, userInput string) ([]state.RetrievedItem, error) {
	product := extractProduct(userInput)

	input, err := json.Marshal(cpqrules.Input{Product: product})
	if err != nil {
		return nil, err
	}

	raw, err := registered.Call(ctx, string(input))
	if err != nil {
		return nil, err
	}

	var rules cpqrules.Rules
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, err
	}

	text := fmt.Sprintf("CPQ rules for %s: base price $%.2f, max discount %.0f%%, approval required above $%.0f. Checklist: %s.",
		rules.Product, rules.BasePrice, rules.MaxDiscount*100, rules.ApprovalThreshold,
		strings.Join(rules.Checklist, "; "))

	return []state.RetrievedItem{{
		ID:     rules.Product,
		Text:   text,
		Source: "CPQ",
		Score:  1.0,
		Marker: "[CPQ]",
	}}, nil
}

// extractProduct pulls a product slug from free text. Known product names
// are checked first; a generic "product <name>" phrase is the fallback, and
// the enterprise suite is the default when nothing matches.
func extractProduct(userInput string) string {
	lowered := strings.ToLower(userInput)
	switch {
	case strings.Contains(lowered, "enterprise suite"):
		return "enterprise suite"
	case strings.Contains(lowered, "starter plan"):
		return "starter plan"
	}
	if match := productPattern.FindStringSubmatch(lowered); match != nil {
		return match[1]
	}
	return "enterprise suite"
}
