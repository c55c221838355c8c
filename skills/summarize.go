package skills

import (
	"context"
	"fmt"

	"github.com/leofalp/opsgraph/core/cost"
	"github.com/leofalp/opsgraph/core/state"
	"github.com/leofalp/opsgraph/prompts"
	"github.com/leofalp/opsgraph/providers/llm"
)

// summarizeTier is the model tier used for summarization. Compression is a
// cheap-model task.
const summarizeTier = 0

// Summarize compresses either the retrieved context or, when nothing was
// retrieved, the raw input itself.
type Summarize struct {
	provider llm.Provider
	registry *prompts.Registry
	pricing  *cost.Table
}

// NewSummarize creates the summarization step.
func NewSummarize(provider llm.Provider, registry *prompts.Registry, pricing *cost.Table) *Summarize {
	return &Summarize{provider: provider, registry: registry, pricing: pricing}
}

func (summarize *Summarize) Execute(ctx context.Context, run *state.RunState) (*state.Update, error) {
	content := run.Input
	if len(run.RetrievedItems) > 0 {
		content = formatChunks(run.RetrievedItems)
	}

	systemPrompt, err := summarize.registry.Render("summarize", "v1", map[string]string{
		"format":     "bullet points",
		"max_tokens": "200",
		"content":    content,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering summarize prompt: %w", err)
	}

	completion, err := summarize.provider.Invoke(ctx, summarizeTier, systemPrompt, run.Input)
	if err != nil {
		return nil, fmt.Errorf("summarize model call: %w", err)
	}

	stepCost := summarize.pricing.Estimate(summarizeTier, completion.InputTokens, completion.OutputTokens)

	return &state.Update{
		FinalAnswer: ptr(completion.Content),
		CostDelta:   stepCost,
		Trace: &state.TraceRecord{
			Model:        tierLabel(summarizeTier),
			Action:       "summarized",
			InputTokens:  completion.InputTokens,
			OutputTokens: completion.OutputTokens,
			Cost:         stepCost,
		},
	}, nil
}
