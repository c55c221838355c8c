// Package copilot wires the skill steps, tool registry, prompt registry, and
// model provider into the runnable ops-copilot graph.
package copilot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/leofalp/opsgraph/config"
	"github.com/leofalp/opsgraph/core/state"
	"github.com/leofalp/opsgraph/engine"
	"github.com/leofalp/opsgraph/prompts"
	"github.com/leofalp/opsgraph/providers/llm"
	"github.com/leofalp/opsgraph/providers/tool"
	"github.com/leofalp/opsgraph/providers/tool/calculator"
	"github.com/leofalp/opsgraph/providers/tool/caselookup"
	"github.com/leofalp/opsgraph/providers/tool/cpqrules"
	"github.com/leofalp/opsgraph/providers/tool/searchdocs"
	"github.com/leofalp/opsgraph/providers/tool/ticket"
	"github.com/leofalp/opsgraph/skills"
)

// Copilot is a compiled ops-copilot ready to process requests. It is safe
// for concurrent use; each run gets its own state.
type Copilot struct {
	graph  *engine.Graph
	config config.Config
}

// Result is the outcome of one run.
type Result struct {
	RunID          string              `json:"run_id"`
	FinalAnswer    string              `json:"final_answer"`
	Intent         state.Intent        `json:"intent"`
	QualityTier    int                 `json:"quality_tier"`
	RiskLevel      state.RiskLevel     `json:"risk_level"`
	CumulativeCost float64             `json:"cumulative_cost"`
	Citations      []string            `json:"citations,omitempty"`
	Error          string              `json:"error,omitempty"`
	Trace          []state.TraceRecord `json:"trace"`
}

// DefaultRegistry returns the tool registry with the full built-in tool set.
func DefaultRegistry() *tool.Registry {
	return tool.NewRegistryWithTools(
		searchdocs.NewSearchDocsTool(nil),
		caselookup.NewCaseLookupTool(),
		cpqrules.NewCPQRulesTool(),
		ticket.NewTicketTool(),
		calculator.NewCalculatorTool(),
	)
}

// New compiles the copilot graph from its collaborators. Passing a nil tool
// or prompt registry selects the built-in one; a nil logger disables logging.
func New(cfg config.Config, provider llm.Provider, tools *tool.Registry, promptRegistry *prompts.Registry, logger *slog.Logger) (*Copilot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if tools == nil {
		tools = DefaultRegistry()
	}
	if promptRegistry == nil {
		promptRegistry = prompts.NewRegistry()
	}

	pricing := cfg.PricingTable()

	router := skills.NewRouter(provider, promptRegistry, pricing, tools.Names())
	governor := skills.NewBudgetGovernor(cfg.BudgetWarningFraction, cfg.GracefulDegrade)
	retrieval := skills.NewRetrieval(tools)

	options := []engine.Option{engine.WithEntry(skills.StepIngest)}
	if logger != nil {
		options = append(options, engine.WithLogger(logger))
	}

	graph, err := engine.NewBuilder(options...).
		AddStep(skills.StepIngest, skills.NewIngest()).
		AddStep(skills.StepRouter, router).
		AddStep(skills.StepBudget, governor).
		AddStep(skills.StepRetrieveQA, retrieval).
		AddStep(skills.StepRetrieveCompliance, retrieval).
		AddStep(skills.StepAnswer, skills.NewAnswer(provider, promptRegistry, pricing)).
		AddStep(skills.StepAction, skills.NewAction(provider, promptRegistry, pricing, tools)).
		AddStep(skills.StepCompliance, skills.NewCompliance(provider, promptRegistry, pricing)).
		AddStep(skills.StepSummarize, skills.NewSummarize(provider, promptRegistry, pricing)).
		AddStep(skills.StepAssemble, skills.NewAssemble()).
		AddEdge(skills.StepIngest, skills.StepRouter).
		AddEdge(skills.StepRouter, skills.StepBudget).
		AddBranch(skills.StepBudget, skills.BudgetSelector, map[string]engine.StepID{
			skills.BranchBlocked:           skills.StepAssemble,
			string(state.IntentQA):         skills.StepRetrieveQA,
			string(state.IntentMultiStep):  skills.StepRetrieveQA,
			string(state.IntentCompliance): skills.StepRetrieveCompliance,
			string(state.IntentAction):     skills.StepAction,
			string(state.IntentSummarize):  skills.StepSummarize,
			engine.DefaultBranch:           skills.StepRetrieveQA,
		}).
		AddEdge(skills.StepRetrieveQA, skills.StepAnswer).
		AddEdge(skills.StepRetrieveCompliance, skills.StepCompliance).
		AddEdge(skills.StepAnswer, skills.StepAssemble).
		AddEdge(skills.StepAction, skills.StepAssemble).
		AddEdge(skills.StepCompliance, skills.StepAssemble).
		AddEdge(skills.StepSummarize, skills.StepAssemble).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building copilot graph: %w", err)
	}

	return &Copilot{graph: graph, config: cfg}, nil
}

// NewDefault builds a copilot from the given config with the built-in tools,
// prompts, and the provider the config selects. Only the mock provider is
// available today; a config asking for a real one is rejected.
func NewDefault(cfg config.Config, logger *slog.Logger) (*Copilot, error) {
	if !cfg.MockLLM {
		return nil, fmt.Errorf("no real model provider is configured; set mock_llm: true")
	}
	return New(cfg, llm.NewMock(cfg.TierModels), nil, nil, logger)
}

// Run processes one request end to end and returns the assembled result.
// The returned result is populated even when the run failed; the error
// reports engine-level failures (step panic, routing error, cancellation).
func (copilot *Copilot) Run(ctx context.Context, input string) (*Result, error) {
	run := state.New(uuid.NewString(), input, copilot.config.MaxBudgetPerRun)

	_, err := copilot.graph.Run(ctx, run)

	result := &Result{
		RunID:          run.RunID,
		FinalAnswer:    run.FinalAnswer,
		Intent:         run.Intent,
		QualityTier:    run.QualityTier,
		RiskLevel:      run.RiskLevel,
		CumulativeCost: run.CumulativeCost,
		Citations:      run.Citations,
		Error:          run.Error,
		Trace:          run.Trace,
	}
	return result, err
}
