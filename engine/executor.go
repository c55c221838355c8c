package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/leofalp/opsgraph/core/state"
)

// Run walks the graph from the entry step to a terminal step, applying
// exactly one step's update at a time. Branch selectors are evaluated against
// the state after the preceding step's update has been merged.
//
// The returned state is always usable: every terminal path, including the
// abort paths, populates a user-visible final answer. A non-nil error means
// the run was aborted (undeclared branch, step failure, cancellation); the
// state's Error tag records the category.
//
// Run is safe for concurrent use: the graph is immutable and all mutable
// data lives in the per-run state.
func (graph *Graph) Run(ctx context.Context, run *state.RunState) (*state.RunState, error) {
	logger := graph.config.logger

	runStart := time.Now()
	graph.observeRunStart(ctx, logger, run)

	current := graph.entry
	visited := make(map[StepID]bool, len(graph.steps))

	for {
		if err := ctx.Err(); err != nil {
			failRun(run, state.ErrTagStepFailed)
			graph.observeRunFailed(ctx, logger, run, err, stepDuration(runStart))
			return run, fmt.Errorf("run canceled before step %q: %w", current, err)
		}

		// Build() proves the topology acyclic, so a revisit means the graph
		// was mutated after construction. Treat it as a fatal routing fault.
		if visited[current] {
			err := fmt.Errorf("step %q already executed in this run", current)
			failRun(run, state.ErrTagRoutingFailed)
			graph.observeRunFailed(ctx, logger, run, err, stepDuration(runStart))
			return run, err
		}
		visited[current] = true

		node := graph.steps[current]

		graph.observeStepStart(ctx, logger, run, current)

		stepStart := time.Now()
		update, stepErr := executeStep(ctx, node, run)
		duration := stepDuration(stepStart)

		if stepErr != nil {
			graph.observeStepFailed(ctx, logger, run, current, stepErr, duration)
			failRun(run, state.ErrTagStepFailed)
			graph.observeRunFailed(ctx, logger, run, stepErr, stepDuration(runStart))
			return run, fmt.Errorf("step %q failed: %w", current, stepErr)
		}

		record := mergeUpdate(run, current, update, duration)
		graph.observeStepCompleted(ctx, logger, run, current, record)

		stepRoute, hasRoute := graph.routes[current]
		if !hasRoute {
			break
		}

		next, routeErr := resolveRoute(current, stepRoute, run)
		if routeErr != nil {
			failRun(run, state.ErrTagRoutingFailed)
			graph.observeRunFailed(ctx, logger, run, routeErr, stepDuration(runStart))
			return run, routeErr
		}

		graph.observeBranchDecision(ctx, logger, run, current, next)
		current = next
	}

	graph.observeRunCompleted(ctx, logger, run, stepDuration(runStart))

	return run, nil
}

// executeStep invokes a step, converting panics into errors so a misbehaving
// step cannot crash the engine.
func executeStep(ctx context.Context, node *stepNode, run *state.RunState) (update *state.Update, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			update = nil
			err = fmt.Errorf("step panicked: %v", recovered)
		}
	}()

	return node.step.Execute(ctx, run)
}

// mergeUpdate applies a step's partial update to the run state and appends
// the step's trace record, stamping the step name and duration. When a step
// omits its trace record, an empty one is synthesized so the trace stays
// exactly one record per invocation.
func mergeUpdate(run *state.RunState, id StepID, update *state.Update, duration time.Duration) state.TraceRecord {
	var record state.TraceRecord
	if update != nil && update.Trace != nil {
		record = *update.Trace
	}
	record.Step = string(id)
	record.Duration = duration

	run.Apply(update)
	run.AppendTrace(record)

	return record
}

// resolveRoute picks the next step from a route. Unconditional edges are
// taken as-is; branch edges dispatch on the selector's key, falling back to
// DefaultBranch when declared.
func resolveRoute(current StepID, stepRoute *route, run *state.RunState) (StepID, error) {
	if stepRoute.selector == nil {
		return stepRoute.next, nil
	}

	key := stepRoute.selector(run)

	if next, declared := stepRoute.branches[key]; declared {
		return next, nil
	}

	if next, declared := stepRoute.branches[DefaultBranch]; declared {
		return next, nil
	}

	return "", &RoutingError{
		Step:     current,
		Branch:   key,
		Declared: stepRoute.declaredBranches(),
	}
}
