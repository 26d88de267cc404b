// Package orchestrator holds the process-wide Context: configuration
// plus every initialized client, addressable by logical name. Context
// is built once at startup and shared read-only by every task.
package orchestrator

import (
	"fmt"
	"sync"
)

// ClientRegistry resolves clients by logical name (e.g. "chat_generation",
// "detector:<id>", "chunker:<id>"). Adapted from a provider:model resolver
// to flat logical-name lookup: the orchestrator's clients are addressed
// by the catalog keys in config.Config (prefixed with their client kind),
// not by a compound provider:model string.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]interface{}
}

// NewClientRegistry builds an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]interface{})}
}

// Register adds or replaces the client addressed by name.
func (r *ClientRegistry) Register(name string, client interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
}

// Get returns the client addressed by name, or an error if absent.
func (r *ClientRegistry) Get(name string) (interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("client not registered: %s", name)
	}
	return c, nil
}

// Names returns every registered client name.
func (r *ClientRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// GetAs resolves name and type-asserts it to T, generalizing the common
// ctx.clients.get_as::<T>(name) pattern from the reference implementation.
func GetAs[T any](r *ClientRegistry, name string) (T, error) {
	var zero T
	c, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("client %q is not of the requested type", name)
	}
	return t, nil
}
