package engine

import (
	"errors"
	"fmt"
	"sort"
)

// Builder constructs a validated Graph using a fluent API. Steps and edges
// are added incrementally, and Build() performs structural validation
// including cycle detection via Kahn's algorithm.
//
// The builder enforces the following constraints:
//   - Step IDs must be unique and non-empty
//   - Edge endpoints must reference registered steps
//   - A step has at most one outgoing route (edge or branch)
//   - The graph must be acyclic
//   - The entry step must exist and have no incoming edges
//
// Example:
//
//	graph, err := engine.NewBuilder(engine.WithEntry("route")).
//	    AddStep("route", routerStep).
//	    AddStep("answer", answerStep).
//	    AddEdge("route", "answer").
//	    Build()
type Builder struct {
	steps     map[StepID]*stepNode
	routes    map[StepID]*route
	stepOrder []StepID
	config    *graphConfig

	// buildErrors accumulates validation errors from AddStep/AddEdge/AddBranch
	// and is reported when Build() is called.
	buildErrors []error
}

// NewBuilder creates a Builder. Graph-level options (WithEntry, WithLogger)
// are applied here.
func NewBuilder(opts ...Option) *Builder {
	config := newGraphConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &Builder{
		steps:       make(map[StepID]*stepNode),
		routes:      make(map[StepID]*route),
		stepOrder:   make([]StepID, 0),
		config:      config,
		buildErrors: make([]error, 0),
	}
}

// AddStep registers a step under a unique ID. The first step added becomes
// the entry point unless WithEntry overrides it. Returns the builder for
// chaining; duplicate or empty IDs are recorded and reported at Build() time.
func (builder *Builder) AddStep(id StepID, step Step) *Builder {
	if id == "" {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("step ID must not be empty"))
		return builder
	}

	if step == nil {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("step must not be nil for %q", id))
		return builder
	}

	if _, exists := builder.steps[id]; exists {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("duplicate step ID %q", id))
		return builder
	}

	builder.steps[id] = &stepNode{id: id, step: step}
	builder.stepOrder = append(builder.stepOrder, id)

	return builder
}

// AddEdge creates the unconditional route from one step to another. A step
// may carry only one outgoing route; conflicting registrations are reported
// at Build() time.
func (builder *Builder) AddEdge(from, to StepID) *Builder {
	if from == "" || to == "" {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("edge endpoints must not be empty (from=%q, to=%q)", from, to))
		return builder
	}

	if from == to {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("self-loop detected: step %q cannot route to itself", from))
		return builder
	}

	if _, exists := builder.routes[from]; exists {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("step %q already has an outgoing route", from))
		return builder
	}

	builder.routes[from] = &route{next: to}

	return builder
}

// AddBranch creates the conditional route out of a step. The selector is
// evaluated against the run state after the step's update has been merged,
// and its return value picks the target from the branch map. Include
// DefaultBranch in the map to make the selector total over unexpected keys;
// without it, an undeclared key fails the run with a *RoutingError.
func (builder *Builder) AddBranch(from StepID, selector Selector, branches map[string]StepID) *Builder {
	if from == "" {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("branch source must not be empty"))
		return builder
	}

	if selector == nil {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("branch selector must not be nil for step %q", from))
		return builder
	}

	if len(branches) == 0 {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("branch map must not be empty for step %q", from))
		return builder
	}

	if _, exists := builder.routes[from]; exists {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("step %q already has an outgoing route", from))
		return builder
	}

	branchCopy := make(map[string]StepID, len(branches))
	for key, target := range branches {
		if target == from {
			builder.buildErrors = append(builder.buildErrors, fmt.Errorf("self-loop detected: step %q cannot route to itself via branch %q", from, key))
			return builder
		}
		branchCopy[key] = target
	}

	builder.routes[from] = &route{selector: selector, branches: branchCopy}

	return builder
}

// Build validates the graph structure and produces an executable Graph.
// On success it computes a topological ordering, proving the topology is
// acyclic by construction.
func (builder *Builder) Build() (*Graph, error) {
	if len(builder.buildErrors) > 0 {
		return nil, fmt.Errorf("graph build errors: %w", errors.Join(builder.buildErrors...))
	}

	if len(builder.steps) == 0 {
		return nil, fmt.Errorf("graph must contain at least one step")
	}

	if err := builder.validateRoutes(); err != nil {
		return nil, err
	}

	entry, err := builder.resolveEntry()
	if err != nil {
		return nil, err
	}

	inDegree, adjacency := builder.buildAdjacency()

	order, err := kahnTopologicalSort(inDegree, adjacency, builder.stepOrder)
	if err != nil {
		return nil, err
	}

	return &Graph{
		steps:  builder.steps,
		routes: builder.routes,
		entry:  entry,
		order:  order,
		config: builder.config,
	}, nil
}

// validateRoutes checks that every route endpoint references a registered step.
func (builder *Builder) validateRoutes() error {
	for from, stepRoute := range builder.routes {
		if _, exists := builder.steps[from]; !exists {
			return fmt.Errorf("route references non-existent source step %q", from)
		}

		if stepRoute.selector == nil {
			if _, exists := builder.steps[stepRoute.next]; !exists {
				return fmt.Errorf("edge from %q references non-existent target step %q", from, stepRoute.next)
			}
			continue
		}

		for key, target := range stepRoute.branches {
			if _, exists := builder.steps[target]; !exists {
				return fmt.Errorf("branch %q from %q references non-existent target step %q", key, from, target)
			}
		}
	}

	return nil
}

// resolveEntry determines the graph entry point. If WithEntry was used, that
// step must exist; otherwise the first registered step is the entry.
func (builder *Builder) resolveEntry() (StepID, error) {
	if builder.config.entry != "" {
		if _, exists := builder.steps[builder.config.entry]; !exists {
			return "", fmt.Errorf("entry step %q does not exist in the graph", builder.config.entry)
		}
		return builder.config.entry, nil
	}

	return builder.stepOrder[0], nil
}

// buildAdjacency constructs the in-degree map and adjacency list from the
// registered steps and routes. Branch edges contribute one arc per target.
func (builder *Builder) buildAdjacency() (map[StepID]int, map[StepID][]StepID) {
	inDegree := make(map[StepID]int, len(builder.steps))
	adjacency := make(map[StepID][]StepID, len(builder.steps))

	for id := range builder.steps {
		inDegree[id] = 0
		adjacency[id] = make([]StepID, 0)
	}

	for from, stepRoute := range builder.routes {
		if stepRoute.selector == nil {
			adjacency[from] = append(adjacency[from], stepRoute.next)
			inDegree[stepRoute.next]++
			continue
		}

		seen := make(map[StepID]bool, len(stepRoute.branches))
		for _, target := range stepRoute.branches {
			// Multiple branch keys may share one target; count the arc once.
			if seen[target] {
				continue
			}
			seen[target] = true
			adjacency[from] = append(adjacency[from], target)
			inDegree[target]++
		}
	}

	return inDegree, adjacency
}

// kahnTopologicalSort performs Kahn's algorithm for topological sorting,
// simultaneously detecting cycles. Within a frontier, steps are processed in
// registration order so the computed order is deterministic.
func kahnTopologicalSort(inDegree map[StepID]int, adjacency map[StepID][]StepID, stepOrder []StepID) ([]StepID, error) {
	position := make(map[StepID]int, len(stepOrder))
	for index, id := range stepOrder {
		position[id] = index
	}

	frontier := make([]StepID, 0)
	for id, degree := range inDegree {
		if degree == 0 {
			frontier = append(frontier, id)
		}
	}
	sortByPosition(frontier, position)

	order := make([]StepID, 0, len(inDegree))

	for len(frontier) > 0 {
		order = append(order, frontier...)

		next := make([]StepID, 0)
		for _, id := range frontier {
			for _, neighbor := range adjacency[id] {
				inDegree[neighbor]--
				if inDegree[neighbor] == 0 {
					next = append(next, neighbor)
				}
			}
		}
		sortByPosition(next, position)

		frontier = next
	}

	if len(order) != len(inDegree) {
		cycleSteps := make([]string, 0)
		for id, degree := range inDegree {
			if degree > 0 {
				cycleSteps = append(cycleSteps, string(id))
			}
		}
		sort.Strings(cycleSteps)
		return nil, fmt.Errorf("cycle detected in graph involving steps: %v", cycleSteps)
	}

	return order, nil
}

// sortByPosition orders step IDs by their registration position.
func sortByPosition(ids []StepID, position map[StepID]int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && position[ids[j]] < position[ids[j-1]]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
