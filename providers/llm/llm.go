// Package llm defines the opaque model collaborator used by skill steps.
// Only the input/output contract matters to the engine: prompt text in,
// completion text plus token counts out. Cost is computed by the caller from
// the token counts and the configured tier pricing table.
package llm

import (
	"context"
	"fmt"
)

// TierCount is the number of quality tiers. Tier 0 is the cheapest model,
// tier TierCount-1 the strongest.
const TierCount = 3

// Completion is the result of one model invocation.
type Completion struct {
	// Content is the raw completion text.
	Content string `json:"content"`

	// Model is the identifier of the model that produced the completion.
	Model string `json:"model"`

	// InputTokens and OutputTokens are the token counts reported by the
	// provider, used for cost accounting.
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Provider is the tier-conditioned model collaborator. Implementations must
// be safe for concurrent use; runs share a single provider instance.
type Provider interface {
	// Invoke sends a system prompt and user message to the model configured
	// for the given quality tier and returns its completion.
	Invoke(ctx context.Context, tier int, systemPrompt, userMessage string) (*Completion, error)
}

// ValidateTier returns an error if the tier is outside the supported range.
func ValidateTier(tier int) error {
	if tier < 0 || tier >= TierCount {
		return fmt.Errorf("invalid tier: %d (must be 0..%d)", tier, TierCount-1)
	}
	return nil
}
