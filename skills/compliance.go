package skills

import (
	"context"
	"fmt"
	"strings"

	"github.com/leofalp/opsgraph/core/cost"
	"github.com/leofalp/opsgraph/core/parse"
	"github.com/leofalp/opsgraph/core/state"
	"github.com/leofalp/opsgraph/prompts"
	"github.com/leofalp/opsgraph/providers/llm"
)

// complianceTier is the model tier compliance assessments always run at,
// regardless of the run's quality tier or budget downgrades. Policy risk is
// never assessed with a weaker model to save money.
const complianceTier = 2

// confidenceFloor is the minimum assessment confidence below which human
// escalation is forced even when the model reports the request compliant.
const confidenceFloor = 0.7

// Compliance assesses policy, legal, or medical risk in the request against
// the retrieved policy context. It is deliberately conservative: critical
// risk or low assessment confidence always escalates to a human.
type Compliance struct {
	provider llm.Provider
	registry *prompts.Registry
	pricing  *cost.Table
}

// NewCompliance creates the compliance assessment step.
func NewCompliance(provider llm.Provider, registry *prompts.Registry, pricing *cost.Table) *Compliance {
	return &Compliance{provider: provider, registry: registry, pricing: pricing}
}

// complianceAssessment is the JSON structure the assessment model returns.
type complianceAssessment struct {
	Status           string   `json:"status"`
	Recommendation   string   `json:"recommendation"`
	CitedPolicies    []string `json:"cited_policies"`
	EscalationNeeded bool     `json:"escalation_needed"`
	Confidence       float64  `json:"confidence"`
}

// Execute runs the assessment at the compliance tier and applies the
// escalation overrides before formatting the verdict.
func (compliance *Compliance) Execute(ctx context.Context, run *state.RunState) (*state.Update, error) {
	systemPrompt, err := compliance.registry.Render("compliance", "v1", map[string]string{
		"policy_context": formatChunks(run.RetrievedItems),
		"risk_level":     string(run.RiskLevel),
		"question":       run.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering compliance prompt: %w", err)
	}

	completion, err := compliance.provider.Invoke(ctx, complianceTier, systemPrompt, run.Input)
	if err != nil {
		return nil, fmt.Errorf("compliance model call: %w", err)
	}

	record := &state.TraceRecord{
		Model:        tierLabel(complianceTier),
		Action:       "assessed",
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
		Cost:         compliance.pricing.Estimate(complianceTier, completion.InputTokens, completion.OutputTokens),
	}

	assessment, parseErr := parse.ParseStringAs[complianceAssessment](completion.Content)
	if parseErr != nil {
		// An unparseable assessment is treated as an uncertain one.
		assessment = complianceAssessment{
			Status:         "needs_review",
			Recommendation: "Assessment response could not be interpreted; route to a compliance specialist.",
			Confidence:     0,
		}
	}

	escalationNotes := []string{}
	if run.RiskLevel == state.RiskCritical && !assessment.EscalationNeeded {
		assessment.EscalationNeeded = true
		escalationNotes = append(escalationNotes, "AUTO-FLAG: risk level is critical, escalation forced.")
	}
	if assessment.Confidence < confidenceFloor && !assessment.EscalationNeeded {
		assessment.EscalationNeeded = true
		escalationNotes = append(escalationNotes,
			fmt.Sprintf("AUTO-FLAG: assessment confidence %.2f is below the %.2f threshold, escalation forced.",
				assessment.Confidence, confidenceFloor))
	}

	if assessment.EscalationNeeded {
		record.Action = "assessed_escalated"
	}

	answer := formatAssessment(assessment, escalationNotes)
	return &state.Update{
		FinalAnswer: ptr(answer),
		CostDelta:   record.Cost,
		Trace:       record,
	}, nil
}

func formatAssessment(assessment complianceAssessment, escalationNotes []string) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Compliance assessment: %s\n", statusLabel(assessment.Status))

	if assessment.Recommendation != "" {
		fmt.Fprintf(&builder, "\nRecommendation: %s\n", assessment.Recommendation)
	}

	if len(assessment.CitedPolicies) > 0 {
		fmt.Fprintf(&builder, "\nCited policies: %s\n", strings.Join(assessment.CitedPolicies, ", "))
	}

	fmt.Fprintf(&builder, "\nConfidence: %.2f\n", assessment.Confidence)

	if assessment.EscalationNeeded {
		builder.WriteString("\n>> ESCALATION REQUIRED: this request has been flagged for human compliance review.\n")
	}
	for _, note := range escalationNotes {
		builder.WriteString(note + "\n")
	}

	return strings.TrimRight(builder.String(), "\n")
}

func statusLabel(status string) string {
	switch status {
	case "compliant":
		return "COMPLIANT"
	case "non_compliant":
		return "NON-COMPLIANT"
	default:
		return "NEEDS HUMAN REVIEW"
	}
}
