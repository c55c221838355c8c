package skills

import (
	"context"
	"strings"
	"testing"

	"github.com/leofalp/opsgraph/core/state"
)

func TestBudgetGovernorPassesUnderThreshold(t *testing.T) {
	governor := NewBudgetGovernor(0.8, true)

	run := state.New("run-1", "input", 0.50)
	run.Apply(&state.Update{CostDelta: 0.10, QualityTier: ptr(1)})

	update, err := governor.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Trace.Action != "passed" {
		t.Errorf("expected passed, got %q", update.Trace.Action)
	}
	if update.QualityTier != nil {
		t.Error("tier must not change under the warning threshold")
	}
	if update.Error != nil {
		t.Error("no error tag expected under the threshold")
	}
}

func TestBudgetGovernorDowngradesAtWarningThreshold(t *testing.T) {
	governor := NewBudgetGovernor(0.8, true)

	// 0.45 of 0.50 spent: 90% used, above the 80% warning line.
	run := state.New("run-1", "input", 0.50)
	run.Apply(&state.Update{CostDelta: 0.45, QualityTier: ptr(1)})

	update, err := governor.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.QualityTier == nil || *update.QualityTier != 0 {
		t.Fatalf("expected downgrade to tier 0, got %v", update.QualityTier)
	}
	if update.Trace.Action != "downgraded_tier_1_to_0" {
		t.Errorf("unexpected action: %q", update.Trace.Action)
	}
	if update.Error != nil {
		t.Error("a downgraded run must not carry an error tag")
	}

	run.Apply(update)
	if run.QualityTier != 0 {
		t.Errorf("expected merged tier 0, got %d", run.QualityTier)
	}
}

func TestBudgetGovernorBlocksWhenExhausted(t *testing.T) {
	governor := NewBudgetGovernor(0.8, true)

	// 0.55 spent against a 0.50 ceiling.
	run := state.New("run-1", "input", 0.50)
	run.Apply(&state.Update{CostDelta: 0.55, QualityTier: ptr(1)})

	update, err := governor.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Error == nil || *update.Error != state.ErrTagBudgetExhausted {
		t.Fatalf("expected budget_exhausted tag, got %v", update.Error)
	}
	if update.Trace.Action != "blocked" {
		t.Errorf("expected blocked, got %q", update.Trace.Action)
	}
	if update.FinalAnswer == nil {
		t.Fatal("a blocked run must carry a final answer")
	}
	// The answer names both the spend and the ceiling.
	if !strings.Contains(*update.FinalAnswer, "0.5500") {
		t.Errorf("answer must include the spend, got %q", *update.FinalAnswer)
	}
	if !strings.Contains(*update.FinalAnswer, "0.50") {
		t.Errorf("answer must include the ceiling, got %q", *update.FinalAnswer)
	}
}

func TestBudgetGovernorBlocksAtExactCeiling(t *testing.T) {
	governor := NewBudgetGovernor(0.8, true)

	run := state.New("run-1", "input", 0.50)
	run.Apply(&state.Update{CostDelta: 0.50, QualityTier: ptr(1)})

	update, err := governor.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Error == nil || *update.Error != state.ErrTagBudgetExhausted {
		t.Fatal("remaining budget of exactly zero must block")
	}
}

func TestBudgetGovernorNoDowngradeWhenDisabled(t *testing.T) {
	governor := NewBudgetGovernor(0.8, false)

	run := state.New("run-1", "input", 0.50)
	run.Apply(&state.Update{CostDelta: 0.45, QualityTier: ptr(1)})

	update, err := governor.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.QualityTier != nil {
		t.Error("degradation disabled: tier must not change")
	}
	if update.Trace.Action != "passed" {
		t.Errorf("expected passed, got %q", update.Trace.Action)
	}
}

func TestBudgetGovernorNoDowngradeBelowTierZero(t *testing.T) {
	governor := NewBudgetGovernor(0.8, true)

	run := state.New("run-1", "input", 0.50)
	run.Apply(&state.Update{CostDelta: 0.45, QualityTier: ptr(0)})

	update, err := governor.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.QualityTier != nil {
		t.Error("tier 0 cannot degrade further")
	}
}

func TestBudgetSelector(t *testing.T) {
	run := state.New("run-1", "input", 0.50)
	run.Apply(&state.Update{Intent: ptr(state.IntentCompliance)})

	if got := BudgetSelector(run); got != "compliance" {
		t.Errorf("expected compliance branch, got %q", got)
	}

	run.Apply(&state.Update{Error: ptr(state.ErrTagBudgetExhausted)})
	if got := BudgetSelector(run); got != BranchBlocked {
		t.Errorf("expected blocked branch, got %q", got)
	}
}
