package skills

import (
	"context"
	"strings"

	"github.com/leofalp/opsgraph/core/state"
)

// defaultAnswer is used when no upstream step produced an answer. Final
// assembly never leaves the answer empty.
const defaultAnswer = "I couldn't process your request."

// Assemble is the terminal step of every run. It fills in a default answer
// when none was produced, appends the citation block when retrieval
// contributed sources, and marks the run done.
type Assemble struct{}

// NewAssemble creates the final assembly step.
func NewAssemble() *Assemble {
	return &Assemble{}
}

func (assemble *Assemble) Execute(_ context.Context, run *state.RunState) (*state.Update, error) {
	answer := run.FinalAnswer
	if answer == "" {
		answer = defaultAnswer
	}

	if len(run.Citations) > 0 {
		var builder strings.Builder
		builder.WriteString(answer)
		builder.WriteString("\n\nSources:\n")
		for _, citation := range run.Citations {
			builder.WriteString("  " + citation + "\n")
		}
		answer = strings.TrimRight(builder.String(), "\n")
	}

	run.ReplaceAnswer(answer)

	return &state.Update{
		Done: true,
		Trace: &state.TraceRecord{
			Action: "assembled",
			Cost:   0,
		},
	}, nil
}
