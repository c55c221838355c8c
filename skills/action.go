package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leofalp/opsgraph/core/cost"
	"github.com/leofalp/opsgraph/core/parse"
	"github.com/leofalp/opsgraph/core/state"
	"github.com/leofalp/opsgraph/prompts"
	"github.com/leofalp/opsgraph/providers/llm"
	"github.com/leofalp/opsgraph/providers/tool"
	"github.com/leofalp/opsgraph/providers/tool/calculator"
	"github.com/leofalp/opsgraph/providers/tool/cpqrules"
	"github.com/leofalp/opsgraph/providers/tool/ticket"
)

// Action plans and executes a side-effecting operation: create a ticket, run
// a calculation, look up pricing rules. Planning is attempted with the
// cheapest model tier; when the plan cannot be obtained or parsed, a keyword
// heuristic over the raw input picks the tool instead, so the step still
// works with no usable model.
type Action struct {
	provider llm.Provider
	registry *prompts.Registry
	pricing  *cost.Table
	tools    *tool.Registry
}

// NewAction creates the action execution step.
func NewAction(provider llm.Provider, registry *prompts.Registry, pricing *cost.Table, tools *tool.Registry) *Action {
	return &Action{provider: provider, registry: registry, pricing: pricing, tools: tools}
}

// actionPlan is the JSON structure the planning model returns.
type actionPlan struct {
	Tool        string         `json:"tool"`
	Params      map[string]any `json:"params"`
	UserMessage string         `json:"user_message"`
}

// Execute resolves an action plan, calls the chosen tool, and formats the
// tool's result as the final answer.
func (action *Action) Execute(ctx context.Context, run *state.RunState) (*state.Update, error) {
	record := &state.TraceRecord{Action: "executed"}

	plan, planned := action.planWithModel(ctx, run, record)
	if !planned {
		plan = planFromKeywords(run)
		record.Action = "executed_fallback_plan"
	}

	if !action.tools.Has(plan.Tool) {
		answer := fmt.Sprintf("Action failed: tool %q is not available.", plan.Tool)
		record.Action = "failed"
		record.Reason = "planned tool not registered"
		return &state.Update{FinalAnswer: ptr(answer), CostDelta: record.Cost, Trace: record}, nil
	}

	registered, err := action.tools.Get(plan.Tool)
	if err != nil {
		return nil, err
	}

	params, err := json.Marshal(plan.Params)
	if err != nil {
		return nil, fmt.Errorf("encoding params for %s: %w", plan.Tool, err)
	}

	record.ToolsCalled = []string{plan.Tool}

	result, err := registered.Call(ctx, string(params))
	if err != nil {
		answer := fmt.Sprintf("Action failed: %v", err)
		record.Action = "failed"
		record.Reason = err.Error()
		return &state.Update{FinalAnswer: ptr(answer), CostDelta: record.Cost, Trace: record}, nil
	}

	answer := formatToolResult(plan, result)
	return &state.Update{
		FinalAnswer: ptr(answer),
		CostDelta:   record.Cost,
		Trace:       record,
	}, nil
}

// planWithModel asks the cheapest tier for an action plan. It reports false
// when no usable plan came back, leaving any cost already incurred on the
// trace record.
func (action *Action) planWithModel(ctx context.Context, run *state.RunState, record *state.TraceRecord) (actionPlan, bool) {
	systemPrompt, err := action.registry.Render("action", "v1", map[string]string{
		"action_type":     run.Input,
		"available_tools": strings.Join(action.tools.Names(), ", "),
	})
	if err != nil {
		return actionPlan{}, false
	}

	completion, err := action.provider.Invoke(ctx, 0, systemPrompt, run.Input)
	if err != nil {
		return actionPlan{}, false
	}

	record.Model = tierLabel(0)
	record.InputTokens = completion.InputTokens
	record.OutputTokens = completion.OutputTokens
	record.Cost = action.pricing.Estimate(0, completion.InputTokens, completion.OutputTokens)

	plan, parseErr := parse.ParseStringAs[actionPlan](completion.Content)
	if parseErr != nil || plan.Tool == "" {
		return actionPlan{}, false
	}
	return plan, true
}

// planFromKeywords is the deterministic fallback planner. It inspects the
// raw input for tool hints and builds a minimal parameter set.
func planFromKeywords(run *state.RunState) actionPlan {
	lowered := strings.ToLower(run.Input)

	switch {
	case strings.Contains(lowered, "ticket") || strings.Contains(lowered, "jira"):
		summary := run.Input
		if len(summary) > 100 {
			summary = summary[:100]
		}
		return actionPlan{
			Tool: ticket.Name,
			Params: map[string]any{
				"summary":     summary,
				"description": run.Input,
				"priority":    "Medium",
			},
		}

	case strings.Contains(lowered, "calculate") || strings.ContainsAny(run.Input, "+-*/") && strings.ContainsAny(run.Input, "0123456789"):
		return actionPlan{
			Tool:   calculator.Name,
			Params: map[string]any{"expression": extractExpression(run.Input)},
		}

	case strings.Contains(lowered, "cpq") || strings.Contains(lowered, "quote") || strings.Contains(lowered, "pricing"):
		return actionPlan{
			Tool:   cpqrules.Name,
			Params: map[string]any{"product": extractProduct(run.Input)},
		}
	}

	if len(run.RequiredTools) > 0 {
		return actionPlan{Tool: run.RequiredTools[0], Params: map[string]any{}}
	}
	return actionPlan{Tool: ticket.Name, Params: map[string]any{
		"summary":     run.Input,
		"description": run.Input,
	}}
}

// extractExpression strips the input down to arithmetic characters.
func extractExpression(input string) string {
	var builder strings.Builder
	for _, char := range input {
		if (char >= '0' && char <= '9') || strings.ContainsRune("+-*/.() ", char) {
			builder.WriteRune(char)
		}
	}
	return strings.TrimSpace(builder.String())
}

// formatToolResult turns a raw tool result into a user-visible answer,
// with per-tool formatting for the common cases.
func formatToolResult(plan actionPlan, rawResult string) string {
	switch plan.Tool {
	case ticket.Name:
		var created ticket.Output
		if err := json.Unmarshal([]byte(rawResult), &created); err == nil {
			return fmt.Sprintf("Ticket created: %s (status: %s)\n%s", created.TicketID, created.Status, created.URL)
		}

	case calculator.Name:
		var result calculator.Output
		if err := json.Unmarshal([]byte(rawResult), &result); err == nil {
			return fmt.Sprintf("%s = %g", result.Expression, result.Result)
		}

	case cpqrules.Name:
		var rules cpqrules.Rules
		if err := json.Unmarshal([]byte(rawResult), &rules); err == nil {
			return fmt.Sprintf("CPQ rules for %s: base price $%.2f, max discount %.0f%%, approval required above $%.0f.\nChecklist:\n- %s",
				rules.Product, rules.BasePrice, rules.MaxDiscount*100, rules.ApprovalThreshold,
				strings.Join(rules.Checklist, "\n- "))
		}
	}

	if plan.UserMessage != "" {
		return plan.UserMessage + "\n" + rawResult
	}
	return rawResult
}
