package launch

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"git.home.luguber.info/inful/trackmcp/internal/config"
	"git.home.luguber.info/inful/trackmcp/internal/logfields"
)

// Controller applies the MCP launch decoration to registrations. A single
// mutex serializes the full check-and-swap sequence so concurrent callers
// observe at-most-once semantics per registration.
type Controller struct {
	mu     sync.Mutex
	logger *slog.Logger
}

// NewController creates a controller logging through logger; nil falls back
// to slog.Default.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{logger: logger}
}

// Enable decorates the registration's launcher with MCP defaults. It is
// idempotent: once a registration carries a saved original, further calls
// are no-ops. When the TRACKIO_ENABLE_MCP toggle is falsy nothing happens
// at all, including the environment marker.
func (c *Controller) Enable(reg *Registration) {
	if reg == nil {
		c.logger.Info("launcher component not available, MCP defaults not enabled")
		return
	}
	if !config.MCPEnabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if reg.original != nil {
		// Already augmented.
		return
	}

	reg.original = reg.launcher
	reg.launcher = &mcpLauncher{original: reg.original, logger: c.logger}
	c.logger.Info("enabled MCP server defaults", logfields.Component(reg.name))
}

// mcpLauncher decorates a Launcher with MCP-enabling defaults.
type mcpLauncher struct {
	original Launcher
	logger   *slog.Logger
}

// Launch injects MCPServer and ShowAPI defaults when the caller expressed no
// preference, records the process-wide marker, and delegates to the saved
// original. Errors from the original propagate unchanged.
func (l *mcpLauncher) Launch(ctx context.Context, opts Options) (*LaunchInfo, error) {
	if opts.MCPServer == nil {
		opts.MCPServer = Bool(true)
	}
	if opts.ShowAPI == nil {
		opts.ShowAPI = Bool(true)
	}

	if *opts.MCPServer {
		// Marker consumed by external status tooling.
		os.Setenv(config.EnvMCPActive, "true")
	}

	info, err := l.original.Launch(ctx, opts)
	if err != nil {
		return info, err
	}

	if *opts.MCPServer && !opts.Quiet && info != nil && info.LocalURL != "" {
		base := strings.TrimRight(info.LocalURL, "/")
		l.logger.Info("MCP server available", logfields.URL(base+SSEPath))
		l.logger.Info("MCP tools schema", logfields.URL(base+SchemaPath))
	}

	return info, nil
}
