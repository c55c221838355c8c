package tool

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrToolNotFound is returned when a lookup names a tool the registry does
// not know. Callers treat it as recoverable: unknown tool names are silently
// ignored during retrieval and surfaced as an "action failed" message during
// action execution.
var ErrToolNotFound = errors.New("tool not found")

// Registry manages a collection of tools with thread-safe operations.
// It is populated at process start and read-mostly afterwards, so concurrent
// runs can share one instance.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]GenericTool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]GenericTool),
	}
}

// NewRegistryWithTools creates a registry pre-populated with the given tools.
// Tool names are taken from each tool's Info().Name.
func NewRegistryWithTools(tools ...GenericTool) *Registry {
	registry := NewRegistry()
	registry.Add(tools...)
	return registry
}

// Add registers tools under their advertised names, stored in lowercase.
// A tool with an already-registered name replaces the previous one.
func (registry *Registry) Add(tools ...GenericTool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for _, genericTool := range tools {
		info := genericTool.Info()
		registry.tools[strings.ToLower(info.Name)] = genericTool
	}
}

// Get retrieves a tool by name (case-insensitive). Unknown names fail with
// an error wrapping ErrToolNotFound.
func (registry *Registry) Get(name string) (GenericTool, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	genericTool, exists := registry.tools[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return genericTool, nil
}

// Has checks if a tool with the given name exists (case-insensitive).
func (registry *Registry) Has(name string) bool {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	_, exists := registry.tools[strings.ToLower(name)]
	return exists
}

// Names returns the sorted names of all registered tools.
func (registry *Registry) Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.tools))
	for name := range registry.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (registry *Registry) Len() int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return len(registry.tools)
}
