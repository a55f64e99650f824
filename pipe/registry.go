package pipe

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps fully-qualified identifiers such as "adjacency.Correlation"
// to pipe factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Registering an identifier twice is an error.
func (r *Registry) Register(id string, f Factory) error {
	if id == "" {
		return fmt.Errorf("pipe: empty identifier")
	}
	if f == nil {
		return fmt.Errorf("pipe: nil factory for %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("pipe: %q already registered", id)
	}
	r.factories[id] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(id string, f Factory) {
	if err := r.Register(id, f); err != nil {
		panic(err)
	}
}

// Lookup retrieves a factory by identifier.
func (r *Registry) Lookup(id string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// List returns sorted identifiers of all registered pipes.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Info describes a registered pipe.
type Info struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Version  string   `json:"version,omitempty"`
}

// Describe instantiates each registered pipe once to report its category.
func (r *Registry) Describe() []Info {
	ids := r.List()
	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		f, _ := r.Lookup(id)
		p := f(id)
		infos = append(infos, Info{ID: id, Category: p.Category(), Version: VersionOf(p)})
	}
	return infos
}
