package param

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicate is returned when two parameters share an address.
var ErrDuplicate = errors.New("parameter already registered")

// Registry indexes parameters by OSC address and keeps registration order.
type Registry struct {
	mu     sync.RWMutex
	params []Parameter
	byAddr map[string]Parameter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byAddr: make(map[string]Parameter)}
}

// Register adds params in order. It stops at the first duplicate address.
func (r *Registry) Register(params ...Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range params {
		addr := p.Address()
		if _, ok := r.byAddr[addr]; ok {
			return fmt.Errorf("register %s: %w", addr, ErrDuplicate)
		}
		r.byAddr[addr] = p
		r.params = append(r.params, p)
	}
	return nil
}

// Lookup finds the parameter at addr.
func (r *Registry) Lookup(addr string) (Parameter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byAddr[addr]
	return p, ok
}

// All returns the parameters in registration order.
func (r *Registry) All() []Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Parameter, len(r.params))
	copy(out, r.params)
	return out
}

// Len returns the number of registered parameters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.params)
}
