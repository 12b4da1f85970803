package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownModel is returned when no adapter is registered for a model id.
var ErrUnknownModel = errors.New("provider: unknown model")

// Registry maps model identifiers to adapter instances.
// It replaces a central per-provider conditional: dispatch is a map lookup,
// and adding a backend means registering one more adapter.
// Registration happens at startup; lookups are read-only afterwards.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register binds a model identifier to an adapter.
// Registering the same model twice replaces the previous binding.
func (r *Registry) Register(model string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[model] = adapter
}

// Resolve returns the adapter registered for the model id.
// Returns ErrUnknownModel if no adapter is registered.
func (r *Registry) Resolve(model string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[model]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	return adapter, nil
}

// Models returns the registered model identifiers in sorted order.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	models := make([]string, 0, len(r.adapters))
	for model := range r.adapters {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}
