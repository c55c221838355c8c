package tool

import (
	"context"
	"errors"
	"testing"
)

type echoInput struct {
	Message string `json:"message"`
}

type echoOutput struct {
	Echo string `json:"echo"`
}

func newEchoTool(name string) *Tool[echoInput, echoOutput] {
	return NewTool(name, func(_ context.Context, input echoInput) (echoOutput, error) {
		return echoOutput{Echo: input.Message}, nil
	}, WithDescription("Echoes the message back."))
}

func TestRegistryAddAndGet(t *testing.T) {
	registry := NewRegistryWithTools(newEchoTool("Echo"))

	if registry.Len() != 1 {
		t.Fatalf("expected 1 tool, got %d", registry.Len())
	}

	// Lookups are case-insensitive.
	for _, name := range []string{"echo", "Echo", "ECHO"} {
		if _, err := registry.Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
		if !registry.Has(name) {
			t.Errorf("Has(%q) = false", name)
		}
	}
}

func TestRegistryGetUnknownTool(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("missing")
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	if registry.Has("missing") {
		t.Error("Has must report false for unknown tools")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistryWithTools(newEchoTool("zeta"), newEchoTool("alpha"), newEchoTool("mid"))

	names := registry.Names()
	expected := []string{"alpha", "mid", "zeta"}
	for index, name := range expected {
		if names[index] != name {
			t.Fatalf("expected %v, got %v", expected, names)
		}
	}
}

func TestRegistryReplaceOnDuplicateName(t *testing.T) {
	registry := NewRegistryWithTools(newEchoTool("echo"))
	registry.Add(newEchoTool("ECHO"))

	if registry.Len() != 1 {
		t.Errorf("duplicate names must replace, got %d tools", registry.Len())
	}
}

func TestToolCallRoundTrip(t *testing.T) {
	echo := newEchoTool("echo")

	result, err := echo.Call(context.Background(), `{"message": "hello"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `{"echo":"hello"}` {
		t.Errorf("unexpected result: %s", result)
	}
}

func TestToolCallRepairsSloppyInput(t *testing.T) {
	echo := newEchoTool("echo")

	// Single-quoted JSON, as models sometimes produce.
	result, err := echo.Call(context.Background(), `{'message': 'hi'}`)
	if err != nil {
		t.Fatalf("expected lenient parsing, got: %v", err)
	}
	if result != `{"echo":"hi"}` {
		t.Errorf("unexpected result: %s", result)
	}
}

func TestToolCallPropagatesFunctionError(t *testing.T) {
	failing := NewTool("failing", func(_ context.Context, _ echoInput) (echoOutput, error) {
		return echoOutput{}, errors.New("backend down")
	})

	if _, err := failing.Call(context.Background(), `{}`); err == nil {
		t.Fatal("expected the function error to propagate")
	}
}
