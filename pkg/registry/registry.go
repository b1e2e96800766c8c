package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
)

// Registry maps collection names to their schemas.
//
// It is built once at startup and frozen when the build begins; after Freeze
// every mutation fails with domain.ErrRegistryFrozen.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]*schema.ObjectType
	order       []string
	defs        map[string]schema.Type
	frozen      bool
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		collections: make(map[string]*schema.ObjectType),
		defs:        make(map[string]schema.Type),
	}
}

// Define adds a named type that schemas can reference with schema.Ref(name).
// Definitions must exist before the collections that reference them are registered.
func (r *Registry) Define(name string, t schema.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return domain.ErrRegistryFrozen
	}
	if name == "" || t == nil {
		return fmt.Errorf("%w: definition needs a name and a type", domain.ErrInvalidSchema)
	}
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("%w: definition %q already exists", domain.ErrInvalidSchema, name)
	}
	r.defs[name] = t
	return nil
}

// Register adds a collection.
// The schema is checked eagerly: duplicate names, cycles, duplicate field
// names, unknown references and invalid defaults are all reported here.
func (r *Registry) Register(name string, s *schema.ObjectType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return domain.ErrRegistryFrozen
	}
	if name == "" {
		return &domain.SchemaError{Reason: "collection name is empty"}
	}
	if s == nil {
		return &domain.SchemaError{Collection: name, Reason: "schema is nil"}
	}
	if _, exists := r.collections[name]; exists {
		return &domain.DuplicateCollectionError{Name: name}
	}

	c := &checker{collection: name, defs: r.defs, active: make(map[schema.Type]bool)}
	if err := c.walk(s, ""); err != nil {
		return err
	}

	r.collections[name] = s
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for static declarations; it panics on error.
func (r *Registry) MustRegister(name string, s *schema.ObjectType) {
	if err := r.Register(name, s); err != nil {
		panic(err)
	}
}

// Resolve returns the schema registered for name.
func (r *Registry) Resolve(name string) (*schema.ObjectType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.collections[name]
	if !ok {
		known := make([]string, len(r.order))
		copy(known, r.order)
		sort.Strings(known)
		return nil, &domain.UnknownCollectionError{Name: name, Known: known}
	}
	return s, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.collections[name]
	return ok
}

// Names returns the registered collection names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Freeze makes the registry read-only. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
