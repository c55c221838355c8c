package llm

import (
	"context"
	"strings"
)

// mockInputTokens and mockOutputTokens are the fixed token counts the mock
// provider reports, so cost figures stay deterministic in mock mode.
const (
	mockInputTokens  = 50
	mockOutputTokens = 30
)

// Mock is a deterministic Provider for running without API keys. Responses
// depend only on the tier, the system prompt, and keywords in the user
// message, so the path a request takes through the graph is reproducible.
//
//   - Classification prompts answer with a router-style decision JSON.
//   - Summarization prompts answer with canned bullet points.
//   - Otherwise tier 1 answers with a grounded, cited response and tier 2
//     with a compliance assessment JSON.
type Mock struct {
	// tierModels labels completions with the model configured per tier.
	tierModels map[int]string
}

var _ Provider = (*Mock)(nil)

// NewMock creates a mock provider. tierModels maps each tier to the model
// identifier reported in completions; missing tiers report "mock".
func NewMock(tierModels map[int]string) *Mock {
	models := make(map[int]string, len(tierModels))
	for tier, model := range tierModels {
		models[tier] = model
	}
	return &Mock{tierModels: models}
}

// Invoke simulates a model call. It never fails and reports fixed token counts.
func (mock *Mock) Invoke(_ context.Context, tier int, systemPrompt, userMessage string) (*Completion, error) {
	if err := ValidateTier(tier); err != nil {
		return nil, err
	}

	return &Completion{
		Content:      mock.generate(tier, systemPrompt, userMessage),
		Model:        mock.model(tier),
		InputTokens:  mockInputTokens,
		OutputTokens: mockOutputTokens,
	}, nil
}

func (mock *Mock) model(tier int) string {
	if model, exists := mock.tierModels[tier]; exists {
		return model
	}
	return "mock"
}

// generate picks a canned response. The system prompt decides the response
// family (several steps share the cheap tier), the tier and user message
// refine it.
func (mock *Mock) generate(tier int, systemPrompt, userMessage string) string {
	text := strings.ToLower(userMessage)

	switch {
	case strings.Contains(systemPrompt, "intent classifier"):
		return classify(text)
	case strings.Contains(systemPrompt, "Summarize the following"):
		return "- Key facts condensed from the source content\n- Dates and action items retained"
	case strings.Contains(systemPrompt, "action executor"):
		// No structured plan; callers fall back to their keyword planner.
		return "unable to produce a plan"
	}

	switch tier {
	case 0:
		return classify(text)
	case 1:
		return "Based on the retrieved documents, the refund policy allows full refunds within 30 days for standard products. [1]"
	default:
		return `{"status": "needs_review", "recommendation": "This request involves PHI data. Route to the compliance team for human review.", "escalation_needed": true, "confidence": 0.85, "cited_policies": ["Compliance Framework v3.0, Section 2.4"]}`
	}
}

// classify mirrors the behavior of a cheap intent-classification model:
// keyword buckets mapped to canned routing decisions.
func classify(text string) string {
	switch {
	case containsAny(text, "calculate", "+", "*", "how much"):
		return `{"intent": "action", "required_tools": ["calculator"], "quality_tier": 0, "risk_level": "low", "reasoning": "Math calculation requested"}`
	case containsAny(text, "ticket", "jira", "create", "open"):
		return `{"intent": "action", "required_tools": ["create_ticket"], "quality_tier": 0, "risk_level": "low", "reasoning": "Action requested: ticket creation"}`
	case containsAny(text, "compliant", "compliance", "hipaa", "medical", "legal"):
		return `{"intent": "compliance", "required_tools": ["search_docs"], "quality_tier": 2, "risk_level": "high", "reasoning": "Compliance or risk assessment needed"}`
	case containsAny(text, "summarize", "summary", "tldr", "shorten"):
		return `{"intent": "summarize", "required_tools": [], "quality_tier": 0, "risk_level": "low", "reasoning": "Summarization requested"}`
	case containsAny(text, "cpq", "quote", "pricing", "checklist"):
		return `{"intent": "action", "required_tools": ["cpq_rules_lookup"], "quality_tier": 0, "risk_level": "low", "reasoning": "CPQ lookup requested"}`
	case containsAny(text, "case-", "salesforce", "case id"):
		return `{"intent": "qa", "required_tools": ["case_lookup", "search_docs"], "quality_tier": 1, "risk_level": "low", "reasoning": "Case lookup needed"}`
	default:
		return `{"intent": "qa", "required_tools": ["search_docs"], "quality_tier": 1, "risk_level": "low", "reasoning": "Standard knowledge query"}`
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
