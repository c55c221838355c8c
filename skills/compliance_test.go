package skills

import (
	"context"
	"strings"
	"testing"

	"github.com/leofalp/opsgraph/core/state"
	"github.com/leofalp/opsgraph/prompts"
	"github.com/leofalp/opsgraph/providers/llm"
)

func TestComplianceAlwaysRunsAtTierTwo(t *testing.T) {
	provider := llm.NewScripted(&llm.Completion{
		Content:      `{"status": "compliant", "recommendation": "Proceed.", "escalation_needed": false, "confidence": 0.9}`,
		InputTokens:  100,
		OutputTokens: 40,
	})
	compliance := NewCompliance(provider, prompts.NewRegistry(), testPricing())

	// Even a budget-downgraded run assesses at the compliance tier.
	run := state.New("run-1", "Can we store PHI in chat logs?", 0.50)
	run.Apply(&state.Update{QualityTier: ptr(0), RiskLevel: ptr(state.RiskHigh)})

	update, err := compliance.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Calls[0].Tier != complianceTier {
		t.Errorf("expected tier %d call, got %d", complianceTier, provider.Calls[0].Tier)
	}
	if update.Trace.Model != "tier_2" {
		t.Errorf("expected tier_2 label, got %q", update.Trace.Model)
	}
	if strings.Contains(*update.FinalAnswer, "ESCALATION REQUIRED") {
		t.Error("a confident compliant verdict must not escalate")
	}
}

func TestComplianceForcesEscalationBelowConfidenceFloor(t *testing.T) {
	provider := llm.NewScripted(&llm.Completion{
		Content:      `{"status": "compliant", "recommendation": "Looks fine.", "escalation_needed": false, "confidence": 0.5}`,
		InputTokens:  100,
		OutputTokens: 40,
	})
	compliance := NewCompliance(provider, prompts.NewRegistry(), testPricing())

	run := state.New("run-1", "Is this contract clause enforceable?", 0.50)
	run.Apply(&state.Update{RiskLevel: ptr(state.RiskMedium)})

	update, err := compliance.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answer := *update.FinalAnswer
	if !strings.Contains(answer, "ESCALATION REQUIRED") {
		t.Errorf("confidence 0.5 must force escalation, got: %q", answer)
	}
	if !strings.Contains(answer, "AUTO-FLAG") {
		t.Errorf("the forced escalation must be flagged in the answer, got: %q", answer)
	}
	if update.Trace.Action != "assessed_escalated" {
		t.Errorf("unexpected action: %q", update.Trace.Action)
	}
}

func TestComplianceForcesEscalationOnCriticalRisk(t *testing.T) {
	provider := llm.NewScripted(&llm.Completion{
		Content:      `{"status": "compliant", "recommendation": "Proceed.", "escalation_needed": false, "confidence": 0.95}`,
		InputTokens:  100,
		OutputTokens: 40,
	})
	compliance := NewCompliance(provider, prompts.NewRegistry(), testPricing())

	run := state.New("run-1", "Delete all audit logs for the EU tenant", 0.50)
	run.Apply(&state.Update{RiskLevel: ptr(state.RiskCritical)})

	update, err := compliance.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(*update.FinalAnswer, "ESCALATION REQUIRED") {
		t.Error("critical risk must force escalation regardless of the verdict")
	}
}

func TestComplianceTreatsUnparseableAssessmentAsUncertain(t *testing.T) {
	provider := llm.NewScripted(&llm.Completion{
		Content:      "It depends on the jurisdiction.",
		InputTokens:  100,
		OutputTokens: 40,
	})
	compliance := NewCompliance(provider, prompts.NewRegistry(), testPricing())

	run := state.New("run-1", "legal question", 0.50)
	run.Apply(&state.Update{RiskLevel: ptr(state.RiskHigh)})

	update, err := compliance.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answer := *update.FinalAnswer
	if !strings.Contains(answer, "NEEDS HUMAN REVIEW") {
		t.Errorf("unparseable assessment must need review, got: %q", answer)
	}
	if !strings.Contains(answer, "ESCALATION REQUIRED") {
		t.Errorf("unparseable assessment must escalate, got: %q", answer)
	}
}

func TestComplianceStatusLabels(t *testing.T) {
	cases := []struct {
		status   string
		expected string
	}{
		{"compliant", "COMPLIANT"},
		{"non_compliant", "NON-COMPLIANT"},
		{"needs_review", "NEEDS HUMAN REVIEW"},
		{"garbage", "NEEDS HUMAN REVIEW"},
	}

	for _, testCase := range cases {
		if got := statusLabel(testCase.status); got != testCase.expected {
			t.Errorf("statusLabel(%q) = %q, expected %q", testCase.status, got, testCase.expected)
		}
	}
}
