package skills

import (
	"context"
	"errors"
	"testing"

	"github.com/leofalp/opsgraph/core/cost"
	"github.com/leofalp/opsgraph/core/state"
	"github.com/leofalp/opsgraph/prompts"
	"github.com/leofalp/opsgraph/providers/llm"
)

func testPricing() *cost.Table {
	return cost.NewTable(
		map[int]string{0: "small", 1: "large", 2: "large"},
		map[string]cost.ModelCost{
			"small": {InputCostPer1K: 0.00015, OutputCostPer1K: 0.0006},
			"large": {InputCostPer1K: 0.0025, OutputCostPer1K: 0.01},
		},
	)
}

func newTestRouter(provider llm.Provider) *Router {
	return NewRouter(provider, prompts.NewRegistry(), testPricing(), []string{"search_docs", "create_ticket"})
}

func TestRouterClassifies(t *testing.T) {
	provider := llm.NewScripted(&llm.Completion{
		Content:      `{"intent": "compliance", "required_tools": ["search_docs"], "quality_tier": 2, "risk_level": "high", "reasoning": "policy risk"}`,
		InputTokens:  50,
		OutputTokens: 30,
	})
	router := newTestRouter(provider)

	run := state.New("run-1", "Is storing PHI in the chat log HIPAA compliant?", 0.50)
	update, err := router.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if update.Intent == nil || *update.Intent != state.IntentCompliance {
		t.Errorf("expected compliance intent, got %v", update.Intent)
	}
	if update.QualityTier == nil || *update.QualityTier != 2 {
		t.Errorf("expected tier 2, got %v", update.QualityTier)
	}
	if update.RiskLevel == nil || *update.RiskLevel != state.RiskHigh {
		t.Errorf("expected high risk, got %v", update.RiskLevel)
	}
	if update.CostDelta <= 0 {
		t.Error("classification must record a positive cost")
	}
	if update.Trace.Action != "classified" {
		t.Errorf("expected classified, got %q", update.Trace.Action)
	}

	// The classifier always runs at the cheapest tier.
	if provider.Calls[0].Tier != 0 {
		t.Errorf("expected tier-0 call, got %d", provider.Calls[0].Tier)
	}
}

func TestRouterFallsBackOnUnparseableResponse(t *testing.T) {
	provider := llm.NewScripted(&llm.Completion{
		Content:      "I believe this is a question about refunds.",
		InputTokens:  50,
		OutputTokens: 30,
	})
	router := newTestRouter(provider)

	run := state.New("run-1", "What's the refund policy?", 0.50)
	update, err := router.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("fallback must not surface an error, got: %v", err)
	}

	if update.Intent == nil || *update.Intent != state.IntentQA {
		t.Errorf("expected fallback intent qa, got %v", update.Intent)
	}
	if len(update.RequiredTools) != 1 || update.RequiredTools[0] != "search_docs" {
		t.Errorf("expected fallback tools [search_docs], got %v", update.RequiredTools)
	}
	if update.QualityTier == nil || *update.QualityTier != 1 {
		t.Errorf("expected fallback tier 1, got %v", update.QualityTier)
	}
	if update.RiskLevel == nil || *update.RiskLevel != state.RiskLow {
		t.Errorf("expected fallback risk low, got %v", update.RiskLevel)
	}
	if update.Trace.Action != "fallback_default" {
		t.Errorf("expected fallback_default, got %q", update.Trace.Action)
	}
	if update.Error != nil {
		t.Error("router fallback must not tag the run with an error")
	}
	// The failed call still spent tokens, so its cost is recorded.
	if update.CostDelta <= 0 {
		t.Error("expected the classification cost recorded despite the fallback")
	}
}

func TestRouterFallsBackOnProviderError(t *testing.T) {
	provider := llm.NewScripted().FailWith(errors.New("model unavailable"))
	router := newTestRouter(provider)

	run := state.New("run-1", "anything", 0.50)
	update, err := router.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("fallback must not surface an error, got: %v", err)
	}
	if update.Intent == nil || *update.Intent != state.IntentQA {
		t.Errorf("expected fallback intent qa, got %v", update.Intent)
	}
	if update.Trace.Action != "fallback_default" {
		t.Errorf("expected fallback_default, got %q", update.Trace.Action)
	}
}

func TestRouterSanitizesOutOfRangeDecision(t *testing.T) {
	provider := llm.NewScripted(&llm.Completion{
		Content:      `{"intent": "chitchat", "required_tools": null, "quality_tier": 7, "risk_level": "extreme"}`,
		InputTokens:  50,
		OutputTokens: 30,
	})
	router := newTestRouter(provider)

	run := state.New("run-1", "hello there", 0.50)
	update, err := router.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *update.Intent != state.IntentQA {
		t.Errorf("unknown intent must default to qa, got %q", *update.Intent)
	}
	if *update.QualityTier != llm.TierCount-1 {
		t.Errorf("tier must clamp to %d, got %d", llm.TierCount-1, *update.QualityTier)
	}
	if *update.RiskLevel != state.RiskLow {
		t.Errorf("unknown risk must default to low, got %q", *update.RiskLevel)
	}
	if update.RequiredTools == nil {
		t.Error("required tools must never merge as nil")
	}
}
