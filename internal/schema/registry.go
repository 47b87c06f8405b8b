package schema

import (
	"errors"
	"fmt"
	"sync"
)

// Shared sentinel errors for registry lookups.
var (
	// ErrNotRegistered is returned when no schema context is registered
	// under the requested type name.
	ErrNotRegistered = errors.New("schema context is not registered")
)

type entry struct {
	name    string
	factory Factory
}

// Registry maps fully-qualified schema-context type names to factories. It
// is built once during application configuration and only read afterwards,
// so it is safe for concurrent use by in-flight requests.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

// NewRegistry creates an empty schema-context registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register binds a factory to a (name, typeName) pair. Registering the same
// type name twice is a configuration error.
func (r *Registry) Register(name, typeName string, factory Factory) error {
	if name == "" {
		return errors.New("schema context name is required")
	}
	if typeName == "" {
		return errors.New("schema context type name is required")
	}
	if factory == nil {
		return errors.New("schema context factory is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[typeName]; exists {
		return fmt.Errorf("schema context %q is already registered", typeName)
	}
	r.entries[typeName] = entry{name: name, factory: factory}
	r.order = append(r.order, typeName)
	return nil
}

// Descriptors enumerates all registered schema-context types in registration
// order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.order))
	for _, typeName := range r.order {
		descriptors = append(descriptors, Descriptor{
			Name:     r.entries[typeName].name,
			TypeName: typeName,
		})
	}
	return descriptors
}

// Resolve constructs a fresh Context for the given fully-qualified type
// name. It returns ErrNotRegistered when the type name is unknown.
func (r *Registry) Resolve(typeName string) (Context, error) {
	r.mu.RLock()
	e, ok := r.entries[typeName]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, typeName)
	}

	sc, err := e.factory()
	if err != nil {
		return nil, fmt.Errorf("construct schema context %s: %w", typeName, err)
	}
	if sc == nil {
		return nil, fmt.Errorf("construct schema context %s: factory returned nil", typeName)
	}
	return sc, nil
}
