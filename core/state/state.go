package state

import (
	"time"
)

// Intent classifies what the user is asking the copilot to do.
// It is set exactly once, by the router step, before any skill step runs.
type Intent string

const (
	// IntentQA is an informational question answered from retrieved documents.
	IntentQA Intent = "qa"

	// IntentAction asks the copilot to do something (create a ticket, run a
	// calculation, look up pricing rules).
	IntentAction Intent = "action"

	// IntentMultiStep needs multiple tools chained together. It currently
	// follows the same retrieval+answer path as IntentQA.
	IntentMultiStep Intent = "multi_step"

	// IntentSummarize asks for content to be shortened or rewritten.
	IntentSummarize Intent = "summarize"

	// IntentCompliance involves legal, medical, or policy risk and is routed
	// through the compliance assessment path.
	IntentCompliance Intent = "compliance"
)

// Valid reports whether the intent is one of the known categories.
func (intent Intent) Valid() bool {
	switch intent {
	case IntentQA, IntentAction, IntentMultiStep, IntentSummarize, IntentCompliance:
		return true
	}
	return false
}

// RiskLevel grades how sensitive a request is. It is set by the router and is
// read-only afterwards; the compliance step uses it to force escalation.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Valid reports whether the risk level is one of the known grades.
func (risk RiskLevel) Valid() bool {
	switch risk {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Error tags used to signal abnormal termination of a run.
const (
	// ErrTagBudgetExhausted marks a run stopped by the budget governor.
	ErrTagBudgetExhausted = "budget_exhausted"

	// ErrTagStepFailed marks a run aborted by an unrecoverable step failure.
	ErrTagStepFailed = "step_failed"

	// ErrTagRoutingFailed marks a run aborted because a branch selector
	// produced an undeclared branch.
	ErrTagRoutingFailed = "routing_failed"
)

// RetrievedItem is one document chunk produced by the retrieval step.
type RetrievedItem struct {
	// ID identifies the source document or record.
	ID string `json:"id"`

	// Text is the retrieved content.
	Text string `json:"text"`

	// Source is a human-readable provenance string, e.g. "Policy Manual v4.2".
	Source string `json:"source"`

	// Score is the relevance score reported by the retrieval tool.
	Score float64 `json:"score"`

	// Marker is the citation marker used to reference this item in the answer,
	// e.g. "[1]" or "[SF-CASE-001]".
	Marker string `json:"marker"`
}

// TraceRecord is one append-only log entry for a single step invocation.
// Every step appends exactly one record per invocation; the engine stamps
// the step name and duration on merge.
type TraceRecord struct {
	// Step is the ID of the step that produced this record.
	Step string `json:"step"`

	// Model is the model tier label used by the step ("tier_0".."tier_2"),
	// or empty when the step made no model call.
	Model string `json:"model,omitempty"`

	// Action describes what the step decided, e.g. "passed", "blocked",
	// "downgraded_tier_1_to_0", "fallback_default".
	Action string `json:"action,omitempty"`

	// Reason explains the action when it is not the normal path.
	Reason string `json:"reason,omitempty"`

	// ToolsCalled lists the tools invoked by this step, in call order.
	ToolsCalled []string `json:"tools_called,omitempty"`

	// InputTokens and OutputTokens are the token counts reported by the
	// model collaborator. Zero when no model call was made.
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`

	// Cost is the cost of this step in USD, rounded to 6 decimal places.
	Cost float64 `json:"cost"`

	// ItemsFound is the number of items produced by a retrieval step.
	ItemsFound int `json:"items_found,omitempty"`

	// Duration is the wall-clock execution time of the step.
	Duration time.Duration `json:"duration,omitempty"`
}

// RunState is the shared mutable record threaded through every step of one
// run. It is owned exclusively by the engine for the duration of the run and
// is never shared across runs.
type RunState struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// Input is the raw user request. Set once at run start, immutable after.
	Input string `json:"input"`

	// Ceiling is the configured maximum budget for this run in USD.
	// Set once at run start; BudgetRemaining is derived from it.
	Ceiling float64 `json:"ceiling"`

	// Intent is the router's classification of the request.
	Intent Intent `json:"intent,omitempty"`

	// RequiredTools are the tool names the router selected. Names unknown to
	// the tool registry are silently ignored downstream.
	RequiredTools []string `json:"required_tools,omitempty"`

	// QualityTier selects the model tier (0 = cheapest, 2 = strongest).
	// Set by the router; afterwards it may only ever decrease.
	QualityTier int `json:"quality_tier"`

	// RiskLevel is the router's risk grade for this request.
	RiskLevel RiskLevel `json:"risk_level,omitempty"`

	// CumulativeCost is the total USD spent so far. Monotonically
	// non-decreasing across the run.
	CumulativeCost float64 `json:"cumulative_cost"`

	// BudgetRemaining is Ceiling minus CumulativeCost. Recomputed on every
	// merge, never mutated independently.
	BudgetRemaining float64 `json:"budget_remaining"`

	// RetrievedItems are the document chunks produced by the retrieval step.
	// An empty slice is a valid, meaningful state ("nothing found").
	RetrievedItems []RetrievedItem `json:"retrieved_items,omitempty"`

	// Citations are formatted citation strings, derived 1:1 from
	// RetrievedItems at retrieval time.
	Citations []string `json:"citations,omitempty"`

	// FinalAnswer is the user-visible result. Optional until a
	// terminal-producing step sets it; never left empty at the terminal point.
	FinalAnswer string `json:"final_answer,omitempty"`

	// Error is an optional tag signalling abnormal termination,
	// e.g. ErrTagBudgetExhausted.
	Error string `json:"error,omitempty"`

	// Trace is the append-only log of step-execution records.
	Trace []TraceRecord `json:"trace"`

	// Done is set by the terminal assembly step.
	Done bool `json:"done"`

	// tierAssigned flips when the router first sets the quality tier.
	// After that, merges may only lower the tier.
	tierAssigned bool

	// answerAssigned flips when the final answer is first set. The answer is
	// set exactly once, by whichever terminal-producing step runs.
	answerAssigned bool
}

// New creates a fresh run state for the given input and budget ceiling.
func New(runID, input string, ceiling float64) *RunState {
	return &RunState{
		RunID:           runID,
		Input:           input,
		Ceiling:         ceiling,
		BudgetRemaining: ceiling,
		Trace:           make([]TraceRecord, 0, 8),
	}
}

// Update is a partial state change returned by a step. Nil pointer fields and
// nil slices leave the corresponding state field untouched; the engine merges
// updates one at a time, so no step ever observes a partially applied update.
type Update struct {
	// Intent sets the classified intent. Router only.
	Intent *Intent

	// RequiredTools replaces the selected tool set. Router only.
	RequiredTools []string

	// QualityTier sets or lowers the model tier. After the first assignment,
	// attempts to raise the tier are ignored on merge.
	QualityTier *int

	// RiskLevel sets the risk grade. Router only.
	RiskLevel *RiskLevel

	// CostDelta is added to the cumulative cost. Negative deltas are ignored;
	// cost only ever moves up.
	CostDelta float64

	// RetrievedItems and Citations set the retrieval output.
	RetrievedItems []RetrievedItem
	Citations      []string

	// FinalAnswer sets the user-visible answer. Only the first assignment
	// takes effect.
	FinalAnswer *string

	// Error sets the abnormal-termination tag.
	Error *string

	// Done marks the run terminal.
	Done bool

	// Trace is the single trace record for this step invocation. When nil,
	// the engine synthesizes an empty record so the trace stays one-per-step.
	Trace *TraceRecord
}

// Apply merges the update into the run state and recomputes the derived
// budget. It enforces the state invariants: the quality tier never rises once
// assigned, cumulative cost never decreases, and the final answer is set at
// most once.
func (run *RunState) Apply(update *Update) {
	if update == nil {
		return
	}

	if update.Intent != nil {
		run.Intent = *update.Intent
	}

	if update.RequiredTools != nil {
		run.RequiredTools = update.RequiredTools
	}

	if update.QualityTier != nil {
		newTier := *update.QualityTier
		if newTier < 0 {
			newTier = 0
		}
		if !run.tierAssigned {
			run.QualityTier = newTier
			run.tierAssigned = true
		} else if newTier < run.QualityTier {
			run.QualityTier = newTier
		}
	}

	if update.RiskLevel != nil {
		run.RiskLevel = *update.RiskLevel
	}

	if update.CostDelta > 0 {
		run.CumulativeCost += update.CostDelta
	}
	run.BudgetRemaining = run.Ceiling - run.CumulativeCost

	if update.RetrievedItems != nil {
		run.RetrievedItems = update.RetrievedItems
	}

	if update.Citations != nil {
		run.Citations = update.Citations
	}

	if update.FinalAnswer != nil && !run.answerAssigned {
		run.FinalAnswer = *update.FinalAnswer
		run.answerAssigned = true
	}

	if update.Error != nil {
		run.Error = *update.Error
	}

	if update.Done {
		run.Done = true
	}
}

// AppendTrace appends one trace record to the run's trace log.
func (run *RunState) AppendTrace(record TraceRecord) {
	run.Trace = append(run.Trace, record)
}

// ReplaceAnswer overwrites the final answer even when it was already assigned.
// Only the terminal assembly step uses this, to append the citation block.
func (run *RunState) ReplaceAnswer(answer string) {
	run.FinalAnswer = answer
	run.answerAssigned = true
}

// HasTool reports whether the router selected the named tool for this run.
func (run *RunState) HasTool(name string) bool {
	for _, toolName := range run.RequiredTools {
		if toolName == name {
			return true
		}
	}
	return false
}
