package cost

import (
	"fmt"
	"math"
)

// Precision is the number of decimal places every computed USD cost is
// rounded to. All cost figures that enter the run state go through [Round].
const Precision = 6

// Round rounds a USD amount to the fixed cost precision (6 decimal places).
func Round(amount float64) float64 {
	factor := math.Pow10(Precision)
	return math.Round(amount*factor) / factor
}

// ModelCost is the pricing structure for a language model.
// Costs are expressed in USD per 1K tokens.
//
// Example:
//
//	modelCost := cost.ModelCost{
//	    InputCostPer1K:  0.0025,
//	    OutputCostPer1K: 0.01,
//	}
type ModelCost struct {
	// InputCostPer1K is the cost in USD per 1000 input tokens.
	InputCostPer1K float64 `json:"input_cost_per_1k" yaml:"input"`

	// OutputCostPer1K is the cost in USD per 1000 output tokens.
	OutputCostPer1K float64 `json:"output_cost_per_1k" yaml:"output"`
}

// CalculateInputCost calculates the cost for the given number of input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return (float64(tokens) / 1000.0) * mc.InputCostPer1K
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return (float64(tokens) / 1000.0) * mc.OutputCostPer1K
}

// CalculateTotalCost calculates the total cost for a single model call,
// rounded to the fixed cost precision.
func (mc ModelCost) CalculateTotalCost(inputTokens, outputTokens int) float64 {
	return Round(mc.CalculateInputCost(inputTokens) + mc.CalculateOutputCost(outputTokens))
}

// String returns a formatted representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/1K, Output: $%.6f/1K", mc.InputCostPer1K, mc.OutputCostPer1K)
}

// Table maps quality tiers to model identifiers and models to their pricing.
// A Table is built once at startup from configuration and is read-only
// afterwards, so concurrent runs can share it without locking.
type Table struct {
	tierModels map[int]string
	modelRates map[string]ModelCost
}

// NewTable builds a pricing table from a tier-to-model mapping and a
// model-to-rates mapping.
func NewTable(tierModels map[int]string, modelRates map[string]ModelCost) *Table {
	models := make(map[int]string, len(tierModels))
	for tier, model := range tierModels {
		models[tier] = model
	}

	rates := make(map[string]ModelCost, len(modelRates))
	for model, rate := range modelRates {
		rates[model] = rate
	}

	return &Table{tierModels: models, modelRates: rates}
}

// Model returns the model identifier configured for the given tier.
// Unknown tiers resolve to the empty string.
func (table *Table) Model(tier int) string {
	return table.tierModels[tier]
}

// Rates returns the pricing for the given model identifier. Models missing
// from the table price at zero, matching the behavior of treating unknown
// models as free rather than failing the run.
func (table *Table) Rates(model string) ModelCost {
	return table.modelRates[model]
}

// Estimate computes the USD cost of a model call at the given tier, rounded
// to the fixed cost precision.
func (table *Table) Estimate(tier, inputTokens, outputTokens int) float64 {
	return table.Rates(table.Model(tier)).CalculateTotalCost(inputTokens, outputTokens)
}
