// Package prompts holds the versioned prompt template registry. Each skill
// requests its system prompt by name and version and fills in parameters at
// render time.
package prompts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrTemplateNotFound is returned when no template matches a name+version.
var ErrTemplateNotFound = errors.New("prompt template not found")

// Template is one versioned prompt. Placeholders use {name} syntax and are
// substituted by Render.
type Template struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Domain   string `json:"domain"`
	RiskTier int    `json:"risk_tier"`
	Text     string `json:"-"`
}

// Info is template metadata without the template text, for listings.
type Info struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Domain   string `json:"domain"`
	RiskTier int    `json:"risk_tier"`
}

// Registry retrieves and renders prompt templates by name and version.
// It is populated at startup and read-mostly afterwards; Register exists for
// runtime overrides in tests and experiments.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewRegistry creates a registry pre-loaded with the built-in templates.
func NewRegistry() *Registry {
	registry := &Registry{templates: make(map[string]Template, len(builtinTemplates))}
	for _, template := range builtinTemplates {
		registry.templates[key(template.Name, template.Version)] = template
	}
	return registry
}

// Get returns the raw template for name+version.
func (registry *Registry) Get(name, version string) (Template, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	template, exists := registry.templates[key(name, version)]
	if !exists {
		return Template{}, fmt.Errorf("%w: %s:%s", ErrTemplateNotFound, name, version)
	}
	return template, nil
}

// Render returns the template text with every {param} placeholder replaced by
// its value. Placeholders without a matching parameter are left verbatim.
func (registry *Registry) Render(name, version string, params map[string]string) (string, error) {
	template, err := registry.Get(name, version)
	if err != nil {
		return "", err
	}

	rendered := template.Text
	for paramName, paramValue := range params {
		rendered = strings.ReplaceAll(rendered, "{"+paramName+"}", paramValue)
	}
	return rendered, nil
}

// List returns the metadata of all registered templates, sorted by
// name then version.
func (registry *Registry) List() []Info {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	infos := make([]Info, 0, len(registry.templates))
	for _, template := range registry.templates {
		infos = append(infos, Info{
			Name:     template.Name,
			Version:  template.Version,
			Domain:   template.Domain,
			RiskTier: template.RiskTier,
		})
	}

	sort.Slice(infos, func(a, b int) bool {
		if infos[a].Name != infos[b].Name {
			return infos[a].Name < infos[b].Name
		}
		return infos[a].Version < infos[b].Version
	})

	return infos
}

// Register adds or overrides a template at runtime.
func (registry *Registry) Register(template Template) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.templates[key(template.Name, template.Version)] = template
}

func key(name, version string) string {
	return name + ":" + version
}
