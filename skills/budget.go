package skills

import (
	"context"
	"fmt"

	"github.com/leofalp/opsgraph/core/state"
)

// Budget branch keys. The governor's outgoing branch either short-circuits
// to final assembly or dispatches to the intent's skill path.
const (
	BranchBlocked = "blocked"
)

// BudgetGovernor gates every run against the per-run cost ceiling and
// degrades gracefully before hard failure. It runs once, after the router
// and before any paid skill step.
//
// The tier only ever moves downward during a run; it is never restored even
// if later spending would show headroom again. One-way degradation avoids
// tier oscillation.
type BudgetGovernor struct {
	warningFraction float64
	gracefulDegrade bool
}

// NewBudgetGovernor creates the governor step. warningFraction is the
// used-budget fraction at which degradation starts (e.g. 0.8).
func NewBudgetGovernor(warningFraction float64, gracefulDegrade bool) *BudgetGovernor {
	return &BudgetGovernor{
		warningFraction: warningFraction,
		gracefulDegrade: gracefulDegrade,
	}
}

// Execute evaluates the budget state machine: block when the ceiling is
// spent, downgrade one tier at the warning threshold when enabled, otherwise
// pass through unchanged.
func (governor *BudgetGovernor) Execute(_ context.Context, run *state.RunState) (*state.Update, error) {
	remaining := run.Ceiling - run.CumulativeCost

	record := &state.TraceRecord{Cost: 0}

	if remaining <= 0 {
		record.Action = "blocked"
		record.Reason = "budget exhausted"

		answer := fmt.Sprintf(
			"Budget exhausted ($%.4f / $%.2f). Cannot continue processing. Please start a new session or increase the budget.",
			run.CumulativeCost, run.Ceiling,
		)

		return &state.Update{
			FinalAnswer: ptr(answer),
			Error:       ptr(state.ErrTagBudgetExhausted),
			Trace:       record,
		}, nil
	}

	usedFraction := run.CumulativeCost / run.Ceiling
	if usedFraction >= governor.warningFraction && governor.gracefulDegrade && run.QualityTier > 0 {
		newTier := run.QualityTier - 1

		record.Action = fmt.Sprintf("downgraded_tier_%d_to_%d", run.QualityTier, newTier)
		record.Reason = fmt.Sprintf("budget %.0f%% used, degrading to save cost", usedFraction*100)

		return &state.Update{
			QualityTier: ptr(newTier),
			Trace:       record,
		}, nil
	}

	record.Action = "passed"
	return &state.Update{Trace: record}, nil
}

// BudgetSelector is the branch selector evaluated after the governor's
// update has been merged. A blocked run short-circuits straight to final
// assembly; otherwise the selector dispatches on the classified intent.
// Unknown intents fall through to the default branch (the Q&A path).
func BudgetSelector(run *state.RunState) string {
	if run.Error == state.ErrTagBudgetExhausted {
		return BranchBlocked
	}
	return string(run.Intent)
}
