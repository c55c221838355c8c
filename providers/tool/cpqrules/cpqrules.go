// Package cpqrules implements the pricing-rule lookup tool. It resolves a
// product name to its CPQ pricing rules and quote checklist from an
// in-process mock dataset.
package cpqrules

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/leofalp/opsgraph/providers/tool"
)

// Name is the registry name of this tool.
const Name = "cpq_rules_lookup"

// Input identifies the product whose rules to look up.
type Input struct {
	Product string `json:"product"`
}

// Rules is the CPQ rule set for one product.
type Rules struct {
	Product           string   `json:"product"`
	BasePrice         float64  `json:"base_price"`
	MaxDiscount       float64  `json:"max_discount"`
	ApprovalThreshold float64  `json:"approval_threshold"`
	BundleOptions     []string `json:"bundle_options"`
	RequiredApprovals []string `json:"required_approvals"`
	Checklist         []string `json:"checklist"`
}

// Lookup resolves a product name to its rules. Names are matched
// case-insensitively with spaces folded to hyphens. Unknown products fail
// with an error listing the known ones.
func Lookup(_ context.Context, input Input) (Rules, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(input.Product)), " ", "-")
	rules, exists := mockRules[key]
	if !exists {
		return Rules{}, fmt.Errorf("no CPQ rules for %q (available: %s)", input.Product, strings.Join(availableProducts(), ", "))
	}
	return rules, nil
}

// NewCPQRulesTool returns the pricing-rule lookup tool.
func NewCPQRulesTool() *tool.Tool[Input, Rules] {
	return tool.NewTool(Name, Lookup,
		tool.WithDescription("Look up CPQ pricing rules and the quote checklist for a product."),
	)
}

func availableProducts() []string {
	products := make([]string, 0, len(mockRules))
	for key := range mockRules {
		products = append(products, key)
	}
	sort.Strings(products)
	return products
}

var mockRules = map[string]Rules{
	"enterprise-suite": {
		Product:           "Enterprise Suite",
		BasePrice:         25000,
		MaxDiscount:       0.15,
		ApprovalThreshold: 10000,
		BundleOptions:     []string{"Support Add-on", "Training Package", "Custom Integration"},
		RequiredApprovals: []string{"Sales Manager"},
		Checklist: []string{
			"Verify customer tier (Gold/Platinum)",
			"Check existing contract terms",
			"Validate bundle compatibility",
			"Confirm discount within threshold (max 15%)",
			"Get Sales Manager approval if > $10,000",
			"Attach signed SOW",
		},
	},
	"starter-plan": {
		Product:           "Starter Plan",
		BasePrice:         500,
		MaxDiscount:       0.10,
		ApprovalThreshold: 5000,
		BundleOptions:     []string{"Basic Support"},
		RequiredApprovals: []string{},
		Checklist: []string{
			"Verify customer email",
			"Confirm billing cycle (monthly/annual)",
			"Apply standard discount if applicable (max 10%)",
			"Generate invoice",
		},
	},
}
