// Package engine implements the step graph that drives one copilot run.
//
// A graph is a fixed, acyclic topology of named steps connected by
// unconditional edges and branch edges. The engine walks it strictly
// sequentially: it executes one step, merges the step's partial update into
// the shared run state, then resolves the outgoing route against the merged
// state. A step is never re-entered within a run.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/leofalp/opsgraph/core/state"
)

// StepID names a step within the graph.
type StepID string

// DefaultBranch is the reserved branch key used as the fallback target when a
// selector produces a key that is not otherwise declared. A branch without a
// default fails with a *RoutingError on undeclared keys.
const DefaultBranch = "default"

// Step is a single unit of work in the graph. It reads a subset of the run
// state and returns a partial update that the engine merges.
//
// An error returned from Execute aborts the run; steps that prefer to degrade
// instead catch their collaborators' failures and fold them into the update.
type Step interface {
	Execute(ctx context.Context, run *state.RunState) (*state.Update, error)
}

// StepFunc adapts an ordinary function to the Step interface.
type StepFunc func(ctx context.Context, run *state.RunState) (*state.Update, error)

// Execute calls the underlying function, satisfying the Step interface.
func (stepFunc StepFunc) Execute(ctx context.Context, run *state.RunState) (*state.Update, error) {
	return stepFunc(ctx, run)
}

// Selector is a pure function of the run state that picks the branch key for
// a conditional route. It is evaluated after the preceding step's update has
// been merged, and must be total over reachable states: every key it returns
// has to be declared in the branch map, or the map must carry DefaultBranch.
type Selector func(run *state.RunState) string

// route is the single outgoing transition of a step. Exactly one of next or
// (selector, branches) is set; a step with neither is terminal.
type route struct {
	next     StepID
	selector Selector
	branches map[string]StepID
}

// RoutingError reports that a selector produced a branch key that was not
// declared on the edge and no default branch exists. This is fatal: the run
// aborts with a generic failure answer.
type RoutingError struct {
	// Step is the step whose selector misbehaved.
	Step StepID

	// Branch is the undeclared key the selector returned.
	Branch string

	// Declared lists the branch keys the edge knows about.
	Declared []string
}

func (routingError *RoutingError) Error() string {
	return fmt.Sprintf("routing error at step %q: selector returned undeclared branch %q (declared: %s)",
		routingError.Step, routingError.Branch, strings.Join(routingError.Declared, ", "))
}

// Graph is a validated, executable topology of steps. It is built via
// [Builder.Build], which checks structural validity (unique IDs, known
// endpoints, acyclicity) up front.
//
// A Graph is immutable after Build and safe for concurrent Run calls: all
// per-run mutable data lives in the state.RunState owned by each run.
type Graph struct {
	steps  map[StepID]*stepNode
	routes map[StepID]*route
	entry  StepID
	order  []StepID
	config *graphConfig
}

// stepNode pairs a step implementation with its ID.
type stepNode struct {
	id   StepID
	step Step
}

// declaredBranches returns the sorted branch keys of a route, for error
// messages and logs.
func (graphRoute *route) declaredBranches() []string {
	keys := make([]string, 0, len(graphRoute.branches))
	for key := range graphRoute.branches {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// genericFailureAnswer is the user-visible answer for runs aborted by a
// fatal engine error. Every terminal path must populate an answer, including
// the abort paths.
const genericFailureAnswer = "Something went wrong while processing your request. Please try again."

// failRun tags the run state with an error and ensures a user-visible answer
// is present before the aborted state is returned.
func failRun(run *state.RunState, tag string) {
	run.Apply(&state.Update{Error: &tag})
	if run.FinalAnswer == "" {
		run.ReplaceAnswer(genericFailureAnswer)
	}
}

// stepDuration is a tiny helper so trace records carry wall-clock step time.
func stepDuration(start time.Time) time.Duration {
	return time.Since(start)
}
