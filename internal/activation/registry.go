// Package activation defers MCP launch decoration until the launcher
// component it targets becomes available.
//
// Components register their launchers in a Registry and consumers obtain
// them through a single resolve primitive. The Hook interposes on that
// primitive so that the moment the target component resolves, the launch
// controller augments it, without changing resolve semantics for anyone.
package activation

import (
	"fmt"
	"sync"

	"git.home.luguber.info/inful/trackmcp/internal/launch"
)

// TargetComponent is the launcher component whose resolution triggers
// activation.
const TargetComponent = "trackio"

// ResolveFunc is the registry's lookup primitive. The hook replaces it with
// a delegating wrapper.
type ResolveFunc func(name string) (*launch.Registration, error)

// Registry holds named launcher registrations.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*launch.Registration
	resolve    ResolveFunc
}

// NewRegistry creates an empty registry with the default resolve primitive.
func NewRegistry() *Registry {
	r := &Registry{components: make(map[string]*launch.Registration)}
	r.resolve = r.lookup
	return r
}

// Register binds a launcher under name and returns its registration.
// Registering the same name again replaces the previous registration.
func (r *Registry) Register(name string, l launch.Launcher) *launch.Registration {
	reg := launch.NewRegistration(name, l)
	r.mu.Lock()
	r.components[name] = reg
	r.mu.Unlock()
	return reg
}

// Resolve returns the registration for name via the current resolve
// primitive.
func (r *Registry) Resolve(name string) (*launch.Registration, error) {
	r.mu.RLock()
	resolve := r.resolve
	r.mu.RUnlock()
	return resolve(name)
}

// lookup is the unwrapped resolve primitive.
func (r *Registry) lookup(name string) (*launch.Registration, error) {
	r.mu.RLock()
	reg, ok := r.components[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("component %q not registered", name)
	}
	return reg, nil
}

// get returns the registration for name without going through the resolve
// primitive, or nil.
func (r *Registry) get(name string) *launch.Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.components[name]
}

// setResolve swaps the resolve primitive and returns the previous one.
func (r *Registry) setResolve(f ResolveFunc) ResolveFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.resolve
	r.resolve = f
	return prev
}

// wrapResolve atomically replaces the resolve primitive with wrap(previous)
// and returns the previous primitive.
func (r *Registry) wrapResolve(wrap func(ResolveFunc) ResolveFunc) ResolveFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.resolve
	r.resolve = wrap(prev)
	return prev
}

// Default is the process-wide registry used by package-level entry points.
var Default = NewRegistry()
