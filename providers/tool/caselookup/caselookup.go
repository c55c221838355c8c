// Package caselookup implements the support-case record lookup tool.
// It resolves a case ID to case details, history, and customer info from an
// in-process mock dataset.
package caselookup

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/leofalp/opsgraph/providers/tool"
)

// Name is the registry name of this tool.
const Name = "case_lookup"

// Input identifies the case to look up.
type Input struct {
	CaseID string `json:"case_id"`
}

// HistoryEntry is one dated action on a case.
type HistoryEntry struct {
	Date   string `json:"date"`
	Action string `json:"action"`
}

// Case is the record returned for a known case ID.
type Case struct {
	ID           string         `json:"id"`
	Subject      string         `json:"subject"`
	Status       string         `json:"status"`
	Priority     string         `json:"priority"`
	Customer     string         `json:"customer"`
	ContactEmail string         `json:"contact_email"`
	Description  string         `json:"description"`
	History      []HistoryEntry `json:"history"`
}

// Lookup resolves a case ID. Unknown IDs fail with an error listing the
// available cases, which the caller surfaces as a user-facing message.
func Lookup(_ context.Context, input Input) (Case, error) {
	caseRecord, exists := mockCases[strings.ToUpper(input.CaseID)]
	if !exists {
		return Case{}, fmt.Errorf("case %q not found (available: %s)", input.CaseID, strings.Join(availableCaseIDs(), ", "))
	}
	return caseRecord, nil
}

// NewCaseLookupTool returns the case lookup tool.
func NewCaseLookupTool() *tool.Tool[Input, Case] {
	return tool.NewTool(Name, Lookup,
		tool.WithDescription("Look up a support case by ID. Returns case details, history, and customer info."),
	)
}

func availableCaseIDs() []string {
	ids := make([]string, 0, len(mockCases))
	for id := range mockCases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var mockCases = map[string]Case{
	"CASE-001": {
		ID:           "CASE-001",
		Subject:      "Product delivery delayed - Enterprise license",
		Status:       "Open",
		Priority:     "High",
		Customer:     "Acme Corp",
		ContactEmail: "john@acme.com",
		Description:  "Customer reports 2-week delay on enterprise license delivery. Affecting 500+ users.",
		History: []HistoryEntry{
			{Date: "2026-02-18", Action: "Created by support agent"},
			{Date: "2026-02-19", Action: "Escalated to operations"},
			{Date: "2026-02-20", Action: "Vendor contacted for ETA"},
		},
	},
	"CASE-002": {
		ID:           "CASE-002",
		Subject:      "Billing discrepancy - Invoice #4521",
		Status:       "Pending",
		Priority:     "Medium",
		Customer:     "TechStart Inc",
		ContactEmail: "billing@techstart.io",
		Description:  "Invoice shows $15,000 but agreed price was $12,000. Needs CPQ verification.",
		History: []HistoryEntry{
			{Date: "2026-02-20", Action: "Created by customer via portal"},
			{Date: "2026-02-21", Action: "Assigned to billing team"},
		},
	},
}
