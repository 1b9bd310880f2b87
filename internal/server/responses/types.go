// Package responses defines API response types used by trackmcp HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/trackmcp/internal/tools"
)

// MCPEndpoints lists the MCP entry points of a running server.
type MCPEndpoints struct {
	SSEURL    string `json:"sse_url"`
	SchemaURL string `json:"schema_url"`
}

// InfoResponse is the service info returned at the server root.
type InfoResponse struct {
	Service   string       `json:"service"`
	Version   string       `json:"version"`
	Status    string       `json:"status"`
	MCP       MCPEndpoints `json:"mcp"`
	Timestamp time.Time    `json:"timestamp"`
}

// HealthResponse is the health check API response.
type HealthResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	Version         string    `json:"version"`
	Uptime          float64   `json:"uptime"`
	ProjectsCached  int       `json:"projects_cached"`
	CacheRefreshed  time.Time `json:"cache_refreshed,omitempty"`
	SSEClients      int       `json:"sse_clients"`
	DatabasePath    string    `json:"database_path"`
	NotifyConnected bool      `json:"notify_connected"`
}

// SchemaResponse describes the exposed tool surface.
type SchemaResponse struct {
	Service string           `json:"service"`
	Version string           `json:"version"`
	Tools   []tools.ToolSpec `json:"tools"`
}

// ErrorResponse is the envelope written for transport-level failures
// (unknown tool, bad method). Tool-level failures use the tool envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
