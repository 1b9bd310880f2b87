package activation

import (
	"log/slog"
	"strings"
	"sync"

	"git.home.luguber.info/inful/trackmcp/internal/launch"
	"git.home.luguber.info/inful/trackmcp/internal/logfields"
)

// Hook interposes on a registry's resolve primitive so the target component
// is augmented the first time it resolves. Installation is idempotent and a
// failing augmentation never disturbs the resolve result seen by callers.
type Hook struct {
	registry   *Registry
	controller *launch.Controller
	target     string
	logger     *slog.Logger

	mu        sync.Mutex
	installed bool
	original  ResolveFunc
}

// NewHook creates a hook targeting TargetComponent on the given registry.
func NewHook(registry *Registry, controller *launch.Controller, logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hook{
		registry:   registry,
		controller: controller,
		target:     TargetComponent,
		logger:     logger,
	}
}

// Install wraps the registry's resolve primitive. Calling Install again
// while installed is a no-op, so hooks never chain.
func (h *Hook) Install() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.installed {
		return
	}
	h.original = h.registry.wrapResolve(h.wrap)
	h.installed = true
}

// Uninstall restores the original resolve primitive. Intended for test
// teardown only.
func (h *Hook) Uninstall() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.installed {
		return
	}
	h.registry.setResolve(h.original)
	h.original = nil
	h.installed = false
}

func (h *Hook) wrap(original ResolveFunc) ResolveFunc {
	return func(name string) (*launch.Registration, error) {
		// Normal resolve semantics come first, unconditionally.
		reg, err := original(name)

		if h.matches(name) {
			h.trigger()
		}

		return reg, err
	}
}

// matches reports whether a resolved name should trigger activation: the
// target itself, or one of its sub-components once the target is present.
func (h *Hook) matches(name string) bool {
	if name == h.target {
		return true
	}
	if strings.HasPrefix(name, h.target+".") {
		return h.registry.get(h.target) != nil
	}
	return false
}

// trigger applies the launch decoration, swallowing any failure so a normal
// resolve never breaks because augmentation did.
func (h *Hook) trigger() {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("deferred MCP activation failed", "panic", r)
		}
	}()
	h.controller.Enable(h.registry.get(h.target))
}

// Setup is the package entry point: augment the target component right away
// when it is already registered, otherwise install a hook that does so on
// first resolve.
func Setup(registry *Registry, controller *launch.Controller, logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	if reg := registry.get(TargetComponent); reg != nil {
		controller.Enable(reg)
		return nil
	}
	logger.Info("launcher component not registered yet, deferring MCP activation",
		logfields.Component(TargetComponent))
	hook := NewHook(registry, controller, logger)
	hook.Install()
	return hook
}
