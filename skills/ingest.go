package skills

import (
	"context"
	"strings"

	"github.com/leofalp/opsgraph/core/state"
)

// Ingest is the entry step. It normalizes the raw input and records the
// run's starting point in the trace. It never fails.
type Ingest struct{}

// NewIngest creates the ingest step.
func NewIngest() *Ingest {
	return &Ingest{}
}

func (ingest *Ingest) Execute(_ context.Context, run *state.RunState) (*state.Update, error) {
	run.Input = strings.TrimSpace(run.Input)

	return &state.Update{
		Trace: &state.TraceRecord{
			Action: "received",
			Cost:   0,
		},
	}, nil
}
