package skills

import (
	"context"
	"fmt"
	"strings"

	"github.com/leofalp/opsgraph/core/cost"
	"github.com/leofalp/opsgraph/core/state"
	"github.com/leofalp/opsgraph/prompts"
	"github.com/leofalp/opsgraph/providers/llm"
)

// insufficientContextAnswer is returned without any model call when
// retrieval produced nothing to ground an answer on.
const insufficientContextAnswer = "I don't have enough information to answer this question. No relevant documents were found."

// Answer produces a grounded response from the retrieved context at the
// run's current quality tier. When retrieval came back empty it refuses
// rather than guess, and spends nothing doing so.
type Answer struct {
	provider llm.Provider
	registry *prompts.Registry
	pricing  *cost.Table
}

// NewAnswer creates the grounded answer step.
func NewAnswer(provider llm.Provider, registry *prompts.Registry, pricing *cost.Table) *Answer {
	return &Answer{provider: provider, registry: registry, pricing: pricing}
}

// Execute renders the grounded-answer prompt over the retrieved chunks and
// invokes the model at the run's quality tier.
func (answer *Answer) Execute(ctx context.Context, run *state.RunState) (*state.Update, error) {
	if len(run.RetrievedItems) == 0 {
		return &state.Update{
			FinalAnswer: ptr(insufficientContextAnswer),
			Trace: &state.TraceRecord{
				Action: "insufficient_context",
				Reason: "retrieval produced no items",
				Cost:   0,
			},
		}, nil
	}

	systemPrompt, err := answer.registry.Render("rag_answer", "v1", map[string]string{
		"citation_instruction": "Cite sources using the given markers, e.g. [1] or [SF-CASE-001]",
		"retrieved_chunks":     formatChunks(run.RetrievedItems),
		"question":             run.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering answer prompt: %w", err)
	}

	tier := run.QualityTier
	completion, err := answer.provider.Invoke(ctx, tier, systemPrompt, run.Input)
	if err != nil {
		return nil, fmt.Errorf("answer model call (tier %d): %w", tier, err)
	}

	stepCost := answer.pricing.Estimate(tier, completion.InputTokens, completion.OutputTokens)

	return &state.Update{
		FinalAnswer: ptr(completion.Content),
		CostDelta:   stepCost,
		Trace: &state.TraceRecord{
			Model:        tierLabel(tier),
			Action:       "answered",
			InputTokens:  completion.InputTokens,
			OutputTokens: completion.OutputTokens,
			Cost:         stepCost,
		},
	}, nil
}

// formatChunks renders retrieved items as marker-prefixed context blocks.
func formatChunks(items []state.RetrievedItem) string {
	var builder strings.Builder
	for _, item := range items {
		fmt.Fprintf(&builder, "%s (%s): %s\n", item.Marker, item.Source, item.Text)
	}
	return builder.String()
}
