// Package probe checks a running MCP tool server: base reachability, the
// SSE endpoint and the tool schema. Each check is a single attempt with the
// caller-supplied timeout; there are no retries.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/trackmcp/internal/launch"
)

// Report is the outcome of probing one server.
type Report struct {
	BaseURL string

	Reachable  bool
	BaseStatus int
	BaseError  string

	SSEStatus int
	SSEError  string

	SchemaStatus int
	SchemaError  string
	ToolCount    int
	ToolNames    []string
}

// Connected reports whether the base URL answered at the transport level.
// A non-200 status still counts as connected; only connection failures
// do not.
func (r Report) Connected() bool { return r.BaseError == "" }

// Prober runs the checks.
type Prober struct {
	client *http.Client
}

// New creates a prober whose requests time out after timeout.
func New(timeout time.Duration) *Prober {
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Run probes the server at baseURL.
func (p *Prober) Run(ctx context.Context, baseURL string) Report {
	base := strings.TrimRight(baseURL, "/")
	report := Report{BaseURL: base}

	report.BaseStatus, report.BaseError = p.get(ctx, base, nil)
	report.Reachable = report.BaseError == "" && report.BaseStatus == http.StatusOK

	// SSE endpoint: a HEAD-like sniff. The stream never ends, so only the
	// response status matters; the body is abandoned immediately.
	report.SSEStatus, report.SSEError = p.head(ctx, base+launch.SSEPath)

	var schemaBody []byte
	report.SchemaStatus, report.SchemaError = p.get(ctx, base+launch.SchemaPath, &schemaBody)
	if report.SchemaStatus == http.StatusOK && len(schemaBody) > 0 {
		report.ToolNames = toolNames(schemaBody)
		report.ToolCount = len(report.ToolNames)
	}

	return report
}

func (p *Prober) get(ctx context.Context, url string, body *[]byte) (int, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err.Error()
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err.Error()
	}
	defer resp.Body.Close()
	if body != nil {
		if data, err := io.ReadAll(resp.Body); err == nil {
			*body = data
		}
	}
	return resp.StatusCode, ""
}

// head issues a GET but closes the body without reading, suitable for
// endpoints that stream forever.
func (p *Prober) head(ctx context.Context, url string) (int, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err.Error()
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err.Error()
	}
	resp.Body.Close()
	return resp.StatusCode, ""
}

func toolNames(schema []byte) []string {
	var parsed struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(schema, &parsed); err != nil {
		return nil
	}
	names := make([]string, 0, len(parsed.Tools))
	for _, tl := range parsed.Tools {
		names = append(names, tl.Name)
	}
	return names
}

// Summary renders the report as console lines.
func (r Report) Summary() []string {
	lines := []string{fmt.Sprintf("Testing MCP server at %s", r.BaseURL)}

	if r.Reachable {
		lines = append(lines, "  server is reachable")
	} else if r.BaseError != "" {
		lines = append(lines, fmt.Sprintf("  server not reachable: %s", r.BaseError))
	} else {
		lines = append(lines, fmt.Sprintf("  server returned status %d", r.BaseStatus))
	}

	switch {
	case r.SSEError != "":
		lines = append(lines, fmt.Sprintf("  MCP endpoint error: %s", r.SSEError))
	case r.SSEStatus == http.StatusOK:
		lines = append(lines, "  MCP endpoint is available")
	default:
		lines = append(lines, fmt.Sprintf("  MCP endpoint returned status %d", r.SSEStatus))
	}

	switch {
	case r.SchemaError != "":
		lines = append(lines, fmt.Sprintf("  schema endpoint error: %s", r.SchemaError))
	case r.SchemaStatus == http.StatusOK:
		lines = append(lines, fmt.Sprintf("  schema available with %d tools", r.ToolCount))
		for i, name := range r.ToolNames {
			if i == 3 {
				lines = append(lines, fmt.Sprintf("    ... and %d more", r.ToolCount-3))
				break
			}
			lines = append(lines, fmt.Sprintf("    - %s", name))
		}
	default:
		lines = append(lines, fmt.Sprintf("  schema endpoint returned status %d", r.SchemaStatus))
	}

	lines = append(lines, fmt.Sprintf("MCP client configuration: %q", r.BaseURL+launch.SSEPath))
	return lines
}
