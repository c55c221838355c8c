// Package tool provides the typed tool abstraction and the registry the
// retrieval and action steps dispatch through. Tools are opaque collaborators:
// a structured parameter payload in, a structured result or an error out.
package tool

import (
	"context"
	"encoding/json"

	"github.com/leofalp/opsgraph/core/parse"
)

// Description is the metadata a tool advertises to the registry.
type Description struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// GenericTool is the provider-agnostic interface for all tools. It abstracts
// over the concrete generic type parameters of [Tool] so tools can be stored
// and dispatched without knowing their exact input/output types.
type GenericTool interface {
	// Info returns the metadata used to register this tool.
	Info() Description

	// Call invokes the tool with a JSON-encoded input string and returns a
	// JSON-encoded output string. Returns an error if parsing or execution
	// fails.
	Call(ctx context.Context, inputJSON string) (string, error)
}

// Tool binds a name and description to a strongly-typed Go function.
// Use [NewTool] to construct one.
type Tool[I, O any] struct {
	Name        string
	Description string
	Function    func(ctx context.Context, input I) (O, error)
}

// toolOptions holds optional configuration for a tool created via [NewTool].
type toolOptions struct {
	Description string
}

// WithDescription sets a human-readable description for the tool.
func WithDescription(description string) func(*toolOptions) {
	return func(options *toolOptions) {
		options.Description = description
	}
}

// NewTool constructs a new [Tool] with the given name and handler function.
//
// Example:
//
//	searchTool := tool.NewTool("search_docs", search,
//	    tool.WithDescription("Searches internal documents and the knowledge base."),
//	)
func NewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...func(*toolOptions)) *Tool[I, O] {
	toolOptions := &toolOptions{}
	for _, option := range options {
		option(toolOptions)
	}

	return &Tool[I, O]{
		Name:        name,
		Description: toolOptions.Description,
		Function:    function,
	}
}

// Info returns the metadata used to register this tool.
func (t *Tool[I, O]) Info() Description {
	return Description{
		Name:        t.Name,
		Description: t.Description,
	}
}

// Call invokes the tool's underlying function with the given JSON-encoded
// input. The input is parsed leniently, since parameter payloads may come
// from model output; the result is serialized back to JSON.
func (t *Tool[I, O]) Call(ctx context.Context, inputJSON string) (string, error) {
	parsedInput, err := parse.ParseStringAs[I](inputJSON)
	if err != nil {
		return "", err
	}

	output, err := t.Function(ctx, parsedInput)
	if err != nil {
		return "", err
	}

	outputBytes, err := json.Marshal(output)
	if err != nil {
		return "", err
	}

	return string(outputBytes), nil
}
