// Package ticket implements the ticket creation tool. Tickets are minted
// in-process with unique IDs; no external tracker is contacted.
package ticket

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leofalp/opsgraph/providers/tool"
)

// Name is the registry name of this tool.
const Name = "create_ticket"

// Input describes the ticket to create. Priority defaults to "Medium".
type Input struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Output is the created ticket.
type Output struct {
	TicketID    string `json:"ticket_id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	URL         string `json:"url"`
}

// Create mints a new ticket with a unique OPS-prefixed ID.
func Create(_ context.Context, input Input) (Output, error) {
	priority := input.Priority
	if priority == "" {
		priority = "Medium"
	}

	ticketID := "OPS-" + strings.ToUpper(uuid.NewString()[:8])

	return Output{
		TicketID:    ticketID,
		Summary:     input.Summary,
		Description: input.Description,
		Priority:    priority,
		Status:      "Open",
		URL:         fmt.Sprintf("https://tickets.ops.internal/browse/%s", ticketID),
	}, nil
}

// NewTicketTool returns the ticket creation tool.
func NewTicketTool() *tool.Tool[Input, Output] {
	return tool.NewTool(Name, Create,
		tool.WithDescription("Create an operations ticket with the given summary, description, and priority."),
	)
}
