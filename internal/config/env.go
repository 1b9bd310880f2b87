package config

import (
	"os"
	"strings"
)

// Environment variable names shared between the launch controller, the CLI
// and external consumers. The TRACKIO_* and GRADIO_* names follow the host
// libraries so existing tooling keeps working against this service.
const (
	// EnvEnableMCP is the primary feature toggle read at activation time.
	EnvEnableMCP = "TRACKIO_ENABLE_MCP"
	// EnvMCPActive is set as a side effect once MCP launch defaults have
	// been applied; other components read it, trackmcp never does.
	EnvMCPActive = "TRACKIO_MCP_ENABLED"
	// EnvGradioMCP is the host framework's own MCP switch, reported by the
	// status command for diagnostics.
	EnvGradioMCP = "GRADIO_MCP_SERVER"
	// EnvTrackioDir overrides the trackio database directory.
	EnvTrackioDir = "TRACKIO_DIR"
	// EnvNATSURL enables the optional run-update publisher.
	EnvNATSURL = "TRACKMCP_NATS_URL"
)

// Truthy reports whether a configuration string means "enabled".
// Recognized values are "true", "1" and "yes" in any case.
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// MCPEnabled reads the primary feature toggle. The feature defaults to
// enabled when the variable is unset.
func MCPEnabled() bool {
	v, ok := os.LookupEnv(EnvEnableMCP)
	if !ok {
		return true
	}
	return Truthy(v)
}
