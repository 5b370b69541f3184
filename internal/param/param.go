// Package param holds named, thread-safe values that the GUI, the network
// server and the application share. A parameter notifies its callbacks when
// its value actually changes, together with the source of the change so a
// listener can skip its own updates.
package param

import (
	"fmt"
	"strings"
	"sync"
)

// Parameter is the type-erased view of a value, used by the registry and the
// network layer.
type Parameter interface {
	Name() string
	Group() string
	// Address is the OSC address: /Group/Name, or /Name without a group.
	Address() string
	// Args encodes the current value as OSC arguments.
	Args() []any
	// SetArgs decodes OSC arguments and sets the value on behalf of src.
	SetArgs(args []any, src any) error
	// OnChange registers fn to run after every change.
	OnChange(fn func(src any))
	Reset()
	String() string
}

// codec converts a value to and from OSC arguments.
type codec[T comparable] struct {
	encode func(T) []any
	decode func([]any) (T, error)
}

// Value is a parameter of type T. The zero value is not usable; use one of
// the New functions.
type Value[T comparable] struct {
	name  string
	group string
	def   T
	codec codec[T]
	clamp func(T) T

	// notify is held from the store through the callbacks, so callbacks
	// see changes in the order they were stored. A callback must not set
	// its own parameter.
	notify sync.Mutex

	mu        sync.RWMutex
	cur       T
	callbacks []func(v T, src any)
}

func newValue[T comparable](name, group string, def T, c codec[T]) *Value[T] {
	return &Value[T]{name: name, group: group, def: def, cur: def, codec: c}
}

// Name returns the parameter name.
func (p *Value[T]) Name() string { return p.name }

// Group returns the parameter group, which may be empty.
func (p *Value[T]) Group() string { return p.group }

func (p *Value[T]) Address() string {
	if p.group == "" {
		return "/" + p.name
	}
	return "/" + strings.Trim(p.group, "/") + "/" + p.name
}

// Default returns the value the parameter was created with.
func (p *Value[T]) Default() T { return p.def }

// Get returns the current value.
func (p *Value[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cur
}

// Set changes the value as a local edit.
func (p *Value[T]) Set(v T) { p.SetFrom(v, nil) }

// SetFrom changes the value on behalf of src. Callbacks run only if the
// stored value differs from the old one. Concurrent sets deliver their
// callbacks one at a time, in store order, so the last callback always
// carries the stored value.
func (p *Value[T]) SetFrom(v T, src any) {
	if p.clamp != nil {
		v = p.clamp(v)
	}

	p.notify.Lock()
	defer p.notify.Unlock()

	p.mu.Lock()
	if v == p.cur {
		p.mu.Unlock()
		return
	}
	p.cur = v
	cbs := p.callbacks
	p.mu.Unlock()

	for _, cb := range cbs {
		cb(v, src)
	}
}

// Reset restores the default value.
func (p *Value[T]) Reset() { p.Set(p.def) }

// RegisterChangeCallback adds fn to the callbacks run after each change.
func (p *Value[T]) RegisterChangeCallback(fn func(v T, src any)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// Copy on write so SetFrom can iterate a snapshot without the lock.
	cbs := make([]func(T, any), len(p.callbacks), len(p.callbacks)+1)
	copy(cbs, p.callbacks)
	p.callbacks = append(cbs, fn)
}

func (p *Value[T]) OnChange(fn func(src any)) {
	p.RegisterChangeCallback(func(_ T, src any) { fn(src) })
}

func (p *Value[T]) Args() []any { return p.codec.encode(p.Get()) }

func (p *Value[T]) SetArgs(args []any, src any) error {
	v, err := p.codec.decode(args)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Address(), err)
	}
	p.SetFrom(v, src)
	return nil
}

func (p *Value[T]) String() string {
	return fmt.Sprintf("%s=%v", p.Address(), p.Get())
}
