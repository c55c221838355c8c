// Package skills implements the processing steps of the copilot graph:
// routing, budget governance, retrieval, grounded answering, action
// execution, compliance assessment, summarization, and final assembly.
//
// Every skill follows the same contract: read a subset of the run state,
// optionally invoke the model collaborator and zero or more named tools, and
// return a partial update carrying exactly one trace record with the step's
// token counts and computed cost. The router and action steps degrade to
// deterministic fallbacks when the collaborator misbehaves; answer,
// compliance, and summarize surface collaborator failures as step errors for
// the engine to handle.
package skills

import "fmt"

// Step IDs of the copilot graph.
const (
	StepIngest             = "ingest"
	StepRouter             = "route_intent"
	StepBudget             = "budget_guard"
	StepRetrieveQA         = "retrieve_for_qa"
	StepRetrieveCompliance = "retrieve_for_compliance"
	StepAnswer             = "answer_with_citations"
	StepAction             = "execute_action"
	StepCompliance         = "compliance_check"
	StepSummarize          = "summarize"
	StepAssemble           = "final_response"
)

// tierLabel formats the model-tier label recorded in trace entries.
func tierLabel(tier int) string {
	return fmt.Sprintf("tier_%d", tier)
}

// ptr returns a pointer to the given value, for optional update fields.
func ptr[T any](value T) *T {
	return &value
}
