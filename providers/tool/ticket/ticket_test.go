package ticket

import (
	"context"
	"strings"
	"testing"
)

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	output, err := Create(context.Background(), Input{
		Summary:     "Delayed Acme delivery",
		Description: "Enterprise license delivery slipped two weeks.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(output.TicketID, "OPS-") {
		t.Errorf("expected an OPS- ticket ID, got %q", output.TicketID)
	}
	if output.Status != "Open" {
		t.Errorf("expected status Open, got %q", output.Status)
	}
	if output.Priority != "Medium" {
		t.Errorf("expected default priority Medium, got %q", output.Priority)
	}
	if !strings.Contains(output.URL, output.TicketID) {
		t.Errorf("expected the ticket ID in the URL, got %q", output.URL)
	}
}

func TestCreateKeepsExplicitPriority(t *testing.T) {
	output, err := Create(context.Background(), Input{Summary: "P1 outage", Priority: "High"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Priority != "High" {
		t.Errorf("expected High, got %q", output.Priority)
	}
}

func TestCreateGeneratesUniqueIDs(t *testing.T) {
	first, err := Create(context.Background(), Input{Summary: "one"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Create(context.Background(), Input{Summary: "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TicketID == second.TicketID {
		t.Errorf("ticket IDs must be unique, got %q twice", first.TicketID)
	}
}
