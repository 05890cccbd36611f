package record

import (
	"fmt"
	"sort"
)

// Registry maps type names to record types, so persisted records can be
// reconstructed by name. Register everything up front; lookups after that are
// safe for concurrent use.
type Registry struct {
	types map[string]*Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register adds a type under its name. Registering a second type with the
// same name is an error.
func (reg *Registry) Register(t *Type) error {
	if _, exists := reg.types[t.name]; exists {
		return fmt.Errorf("%q: %w", t.name, ErrTypeRegistered)
	}
	reg.types[t.name] = t
	return nil
}

// MustRegister is Register for setup code; it panics on a duplicate name.
func (reg *Registry) MustRegister(t *Type) {
	if err := reg.Register(t); err != nil {
		panic(err)
	}
}

// Lookup returns the type registered under name.
func (reg *Registry) Lookup(name string) (*Type, bool) {
	t, ok := reg.types[name]
	return t, ok
}

// Types returns the registered type names, sorted.
func (reg *Registry) Types() []string {
	names := make([]string, 0, len(reg.types))
	for name := range reg.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
