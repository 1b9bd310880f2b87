// Package launch augments a UI launcher capability with MCP server defaults.
//
// The host UI framework exposes its dashboard through a launcher; trackmcp
// wraps that launcher so MCP support is switched on by default without the
// caller having to know about it. The wrapping is applied at most once per
// registration and only when the TRACKIO_ENABLE_MCP toggle allows it.
package launch

import "context"

// Options carries launch-time configuration for a Launcher. MCPServer and
// ShowAPI are tri-state: nil means the caller expressed no preference and
// the decorator may inject a default.
type Options struct {
	Host  string
	Port  int
	Share bool
	Quiet bool

	// MCPServer enables the framework's MCP endpoint.
	MCPServer *bool
	// ShowAPI enables the framework's API surface, required for MCP.
	ShowAPI *bool
}

// Bool returns a pointer to b, for populating tri-state options.
func Bool(b bool) *bool { return &b }

// LaunchInfo describes a started UI instance.
type LaunchInfo struct {
	// LocalURL is the local base URL of the running instance.
	LocalURL string
	// ShareURL is the public URL when sharing is enabled.
	ShareURL string
}

// Launcher is the capability trackmcp decorates. Implementations start the
// host UI and block only as long as startup takes.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (*LaunchInfo, error)
}

// SSEPath and SchemaPath are the framework's fixed MCP endpoint locations
// relative to a running instance's base URL.
const (
	SSEPath    = "/gradio_api/mcp/sse"
	SchemaPath = "/gradio_api/mcp/schema"
)

// Registration binds a named launcher so it can be decorated in place.
// The zero value is not usable; create registrations via NewRegistration.
type Registration struct {
	name     string
	launcher Launcher
	// original is the pre-decoration launcher. Set exactly once by the
	// controller; non-nil means the registration is already augmented.
	original Launcher
}

// NewRegistration creates a registration for a named launcher component.
func NewRegistration(name string, l Launcher) *Registration {
	return &Registration{name: name, launcher: l}
}

// Name returns the component name the launcher was registered under.
func (r *Registration) Name() string { return r.name }

// Launcher returns the launcher to use, decorated or not.
func (r *Registration) Launcher() Launcher { return r.launcher }

// Original returns the saved pre-decoration launcher, or nil when the
// registration has not been augmented.
func (r *Registration) Original() Launcher { return r.original }
