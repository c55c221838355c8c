package skills

import (
	"context"
	"strings"
	"testing"

	"github.com/leofalp/opsgraph/core/state"
)

func TestAssembleAppendsCitations(t *testing.T) {
	assemble := NewAssemble()

	run := state.New("run-1", "question", 0.50)
	run.Apply(&state.Update{
		FinalAnswer: ptr("Refunds are allowed within 30 days. [1]"),
		Citations:   []string{"[1] Policy Manual v4.2", "[2] Support Handbook"},
	})

	update, err := assemble.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !update.Done {
		t.Error("assembly must mark the run done")
	}

	answer := run.FinalAnswer
	if !strings.Contains(answer, "Sources:") {
		t.Fatalf("expected a sources block, got %q", answer)
	}
	if !strings.Contains(answer, "[1] Policy Manual v4.2") || !strings.Contains(answer, "[2] Support Handbook") {
		t.Errorf("expected every citation listed, got %q", answer)
	}
	if !strings.HasPrefix(answer, "Refunds are allowed within 30 days. [1]") {
		t.Errorf("the original answer must lead, got %q", answer)
	}
}

func TestAssembleWithoutCitationsLeavesAnswerAlone(t *testing.T) {
	assemble := NewAssemble()

	run := state.New("run-1", "question", 0.50)
	run.Apply(&state.Update{FinalAnswer: ptr("Ticket created: OPS-ABC123 (status: Open)")})

	if _, err := assemble.Execute(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(run.FinalAnswer, "Sources:") {
		t.Errorf("no citations: no sources block expected, got %q", run.FinalAnswer)
	}
}

func TestAssembleFillsDefaultAnswer(t *testing.T) {
	assemble := NewAssemble()

	run := state.New("run-1", "question", 0.50)
	if _, err := assemble.Execute(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.FinalAnswer != defaultAnswer {
		t.Errorf("expected the default answer, got %q", run.FinalAnswer)
	}
}

func TestIngestTrimsInput(t *testing.T) {
	ingest := NewIngest()

	run := state.New("run-1", "   what's the refund policy?   ", 0.50)
	update, err := ingest.Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Input != "what's the refund policy?" {
		t.Errorf("expected trimmed input, got %q", run.Input)
	}
	if update.Trace.Action != "received" {
		t.Errorf("expected received, got %q", update.Trace.Action)
	}
}
