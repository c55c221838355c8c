package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/leofalp/opsgraph/core/state"
)

// noopStep is the minimal step used for structural tests.
var noopStep = StepFunc(func(_ context.Context, _ *state.RunState) (*state.Update, error) {
	return &state.Update{}, nil
})

func TestBuildLinearGraph(t *testing.T) {
	graph, err := NewBuilder().
		AddStep("a", noopStep).
		AddStep("b", noopStep).
		AddStep("c", noopStep).
		AddEdge("a", "b").
		AddEdge("b", "c").
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if graph.entry != "a" {
		t.Errorf("expected first step as entry, got %q", graph.entry)
	}
	if len(graph.order) != 3 {
		t.Errorf("expected 3 steps in order, got %d", len(graph.order))
	}
}

func TestBuildWithEntryOption(t *testing.T) {
	graph, err := NewBuilder(WithEntry("b")).
		AddStep("a", noopStep).
		AddStep("b", noopStep).
		AddEdge("b", "a").
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if graph.entry != "b" {
		t.Errorf("expected entry b, got %q", graph.entry)
	}
}

func TestBuildRejectsUnknownEntry(t *testing.T) {
	_, err := NewBuilder(WithEntry("missing")).
		AddStep("a", noopStep).
		Build()
	if err == nil {
		t.Fatal("expected an error for a non-existent entry step")
	}
}

func TestBuildRejectsEmptyGraph(t *testing.T) {
	if _, err := NewBuilder().Build(); err == nil {
		t.Fatal("expected an error for an empty graph")
	}
}

func TestBuildRejectsDuplicateStepID(t *testing.T) {
	_, err := NewBuilder().
		AddStep("a", noopStep).
		AddStep("a", noopStep).
		Build()
	if err == nil || !strings.Contains(err.Error(), "duplicate step ID") {
		t.Fatalf("expected duplicate-ID error, got: %v", err)
	}
}

func TestBuildRejectsNilStep(t *testing.T) {
	_, err := NewBuilder().AddStep("a", nil).Build()
	if err == nil {
		t.Fatal("expected an error for a nil step")
	}
}

func TestBuildRejectsSecondOutgoingRoute(t *testing.T) {
	_, err := NewBuilder().
		AddStep("a", noopStep).
		AddStep("b", noopStep).
		AddStep("c", noopStep).
		AddEdge("a", "b").
		AddEdge("a", "c").
		Build()
	if err == nil || !strings.Contains(err.Error(), "already has an outgoing route") {
		t.Fatalf("expected one-route-per-step error, got: %v", err)
	}
}

func TestBuildRejectsSelfLoop(t *testing.T) {
	_, err := NewBuilder().
		AddStep("a", noopStep).
		AddEdge("a", "a").
		Build()
	if err == nil || !strings.Contains(err.Error(), "self-loop") {
		t.Fatalf("expected self-loop error, got: %v", err)
	}
}

func TestBuildRejectsUnknownEdgeTarget(t *testing.T) {
	_, err := NewBuilder().
		AddStep("a", noopStep).
		AddEdge("a", "ghost").
		Build()
	if err == nil || !strings.Contains(err.Error(), "non-existent target") {
		t.Fatalf("expected unknown-target error, got: %v", err)
	}
}

func TestBuildDetectsCycle(t *testing.T) {
	_, err := NewBuilder().
		AddStep("a", noopStep).
		AddStep("b", noopStep).
		AddStep("c", noopStep).
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", "a").
		Build()
	if err == nil || !strings.Contains(err.Error(), "cycle detected") {
		t.Fatalf("expected cycle error, got: %v", err)
	}
}

func TestBuildDetectsCycleThroughBranch(t *testing.T) {
	selector := func(_ *state.RunState) string { return "loop" }

	_, err := NewBuilder().
		AddStep("a", noopStep).
		AddStep("b", noopStep).
		AddEdge("a", "b").
		AddBranch("b", selector, map[string]StepID{"loop": "a"}).
		Build()
	if err == nil || !strings.Contains(err.Error(), "cycle detected") {
		t.Fatalf("expected cycle error, got: %v", err)
	}
}

func TestBuildRejectsEmptyBranchMap(t *testing.T) {
	selector := func(_ *state.RunState) string { return "x" }

	_, err := NewBuilder().
		AddStep("a", noopStep).
		AddBranch("a", selector, map[string]StepID{}).
		Build()
	if err == nil {
		t.Fatal("expected an error for an empty branch map")
	}
}

func TestBuildRejectsNilSelector(t *testing.T) {
	_, err := NewBuilder().
		AddStep("a", noopStep).
		AddStep("b", noopStep).
		AddBranch("a", nil, map[string]StepID{"x": "b"}).
		Build()
	if err == nil {
		t.Fatal("expected an error for a nil selector")
	}
}

func TestBuildBranchTargetsSharingStep(t *testing.T) {
	selector := func(_ *state.RunState) string { return "x" }

	// Two branch keys pointing at the same target must not double-count the
	// arc in the topological sort.
	_, err := NewBuilder().
		AddStep("a", noopStep).
		AddStep("b", noopStep).
		AddBranch("a", selector, map[string]StepID{"x": "b", "y": "b", DefaultBranch: "b"}).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
}
