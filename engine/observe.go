package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/opsgraph/core/state"
)

// Semantic conventions for engine log attributes.
const (
	attrRunID    = "run.id"
	attrRunSteps = "run.steps"
	attrRunCost  = "run.cost"
	attrRunError = "run.error"

	attrStepID       = "step.id"
	attrStepAction   = "step.action"
	attrStepCost     = "step.cost"
	attrStepDuration = "step.duration"

	attrBranchNext = "branch.next"
)

func (graph *Graph) observeRunStart(ctx context.Context, logger *slog.Logger, run *state.RunState) {
	logger.LogAttrs(ctx, slog.LevelInfo, "run started",
		slog.String(attrRunID, run.RunID),
		slog.Int(attrRunSteps, len(graph.steps)),
		slog.String("run.entry", string(graph.entry)),
	)
}

func (graph *Graph) observeRunCompleted(ctx context.Context, logger *slog.Logger, run *state.RunState, duration time.Duration) {
	logger.LogAttrs(ctx, slog.LevelInfo, "run completed",
		slog.String(attrRunID, run.RunID),
		slog.String("run.intent", string(run.Intent)),
		slog.Float64(attrRunCost, run.CumulativeCost),
		slog.Int("run.trace_len", len(run.Trace)),
		slog.Duration(attrStepDuration, duration),
	)
}

func (graph *Graph) observeRunFailed(ctx context.Context, logger *slog.Logger, run *state.RunState, runError error, duration time.Duration) {
	logger.LogAttrs(ctx, slog.LevelError, "run failed",
		slog.String(attrRunID, run.RunID),
		slog.String(attrRunError, runError.Error()),
		slog.Float64(attrRunCost, run.CumulativeCost),
		slog.Duration(attrStepDuration, duration),
	)
}

func (graph *Graph) observeStepStart(ctx context.Context, logger *slog.Logger, run *state.RunState, id StepID) {
	logger.LogAttrs(ctx, slog.LevelDebug, "step started",
		slog.String(attrRunID, run.RunID),
		slog.String(attrStepID, string(id)),
	)
}

func (graph *Graph) observeStepCompleted(ctx context.Context, logger *slog.Logger, run *state.RunState, id StepID, record state.TraceRecord) {
	logger.LogAttrs(ctx, slog.LevelInfo, "step completed",
		slog.String(attrRunID, run.RunID),
		slog.String(attrStepID, string(id)),
		slog.String(attrStepAction, record.Action),
		slog.Float64(attrStepCost, record.Cost),
		slog.Float64(attrRunCost, run.CumulativeCost),
		slog.Duration(attrStepDuration, record.Duration),
	)
}

func (graph *Graph) observeStepFailed(ctx context.Context, logger *slog.Logger, run *state.RunState, id StepID, stepError error, duration time.Duration) {
	logger.LogAttrs(ctx, slog.LevelError, "step failed",
		slog.String(attrRunID, run.RunID),
		slog.String(attrStepID, string(id)),
		slog.String(attrRunError, stepError.Error()),
		slog.Duration(attrStepDuration, duration),
	)
}

func (graph *Graph) observeBranchDecision(ctx context.Context, logger *slog.Logger, run *state.RunState, id StepID, next StepID) {
	logger.LogAttrs(ctx, slog.LevelDebug, "branch decision",
		slog.String(attrRunID, run.RunID),
		slog.String(attrStepID, string(id)),
		slog.String(attrBranchNext, string(next)),
	)
}
