package skills

import (
	"context"
	"strings"

	"github.com/leofalp/opsgraph/core/cost"
	"github.com/leofalp/opsgraph/core/parse"
	"github.com/leofalp/opsgraph/core/state"
	"github.com/leofalp/opsgraph/prompts"
	"github.com/leofalp/opsgraph/providers/llm"
)

// Router classifies the user request into an intent, a minimal required-tool
// set, a starting quality tier, and a risk level, using the cheapest model
// tier. It fails softly: when the classification cannot be obtained or
// parsed, a conservative default decision is substituted and the fallback
// reason is recorded in the trace. The router never aborts the run.
type Router struct {
	provider       llm.Provider
	registry       *prompts.Registry
	pricing        *cost.Table
	availableTools []string
}

// NewRouter creates the router step. availableTools is the list of tool
// names advertised to the classifier prompt.
func NewRouter(provider llm.Provider, registry *prompts.Registry, pricing *cost.Table, availableTools []string) *Router {
	return &Router{
		provider:       provider,
		registry:       registry,
		pricing:        pricing,
		availableTools: availableTools,
	}
}

// routerDecision is the JSON structure the classification model returns.
type routerDecision struct {
	Intent        string   `json:"intent"`
	RequiredTools []string `json:"required_tools"`
	QualityTier   int      `json:"quality_tier"`
	RiskLevel     string   `json:"risk_level"`
	Reasoning     string   `json:"reasoning"`
}

// fallbackDecision is the conservative default used when the model's output
// cannot be obtained or parsed.
func fallbackDecision() routerDecision {
	return routerDecision{
		Intent:        string(state.IntentQA),
		RequiredTools: []string{"search_docs"},
		QualityTier:   1,
		RiskLevel:     string(state.RiskLow),
	}
}

// Execute classifies the request and sets the routing fields of the state.
func (router *Router) Execute(ctx context.Context, run *state.RunState) (*state.Update, error) {
	record := &state.TraceRecord{Model: tierLabel(0), Action: "classified"}

	decision := fallbackDecision()

	systemPrompt, err := router.registry.Render("router", "v1", map[string]string{
		"user_role":       "support_agent",
		"available_tools": strings.Join(router.availableTools, ", "),
	})
	if err != nil {
		record.Action = "fallback_default"
		record.Reason = "prompt template lookup failed: " + err.Error()
		return router.decisionUpdate(decision, record), nil
	}

	completion, err := router.provider.Invoke(ctx, 0, systemPrompt, run.Input)
	if err != nil {
		record.Action = "fallback_default"
		record.Reason = "classification call failed: " + err.Error()
		return router.decisionUpdate(decision, record), nil
	}

	record.InputTokens = completion.InputTokens
	record.OutputTokens = completion.OutputTokens
	record.Cost = router.pricing.Estimate(0, completion.InputTokens, completion.OutputTokens)

	parsed, parseErr := parse.ParseStringAs[routerDecision](completion.Content)
	if parseErr != nil {
		record.Action = "fallback_default"
		record.Reason = "failed to parse router response, defaulting to Q&A"
		return router.decisionUpdate(decision, record), nil
	}

	decision = sanitizeDecision(parsed)
	record.Reason = decision.Reasoning

	return router.decisionUpdate(decision, record), nil
}

// sanitizeDecision applies per-field defaults so a structurally valid but
// semantically off decision (unknown intent, out-of-range tier) still yields
// a usable plan.
func sanitizeDecision(decision routerDecision) routerDecision {
	if !state.Intent(decision.Intent).Valid() {
		decision.Intent = string(state.IntentQA)
	}

	if !state.RiskLevel(decision.RiskLevel).Valid() {
		decision.RiskLevel = string(state.RiskLow)
	}

	if decision.QualityTier < 0 {
		decision.QualityTier = 0
	}
	if decision.QualityTier >= llm.TierCount {
		decision.QualityTier = llm.TierCount - 1
	}

	if decision.RequiredTools == nil {
		decision.RequiredTools = []string{}
	}

	return decision
}

func (router *Router) decisionUpdate(decision routerDecision, record *state.TraceRecord) *state.Update {
	return &state.Update{
		Intent:        ptr(state.Intent(decision.Intent)),
		RequiredTools: decision.RequiredTools,
		QualityTier:   ptr(decision.QualityTier),
		RiskLevel:     ptr(state.RiskLevel(decision.RiskLevel)),
		CostDelta:     record.Cost,
		Trace:         record,
	}
}
