package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/trackmcp/internal/launch"
	"git.home.luguber.info/inful/trackmcp/internal/logfields"
	"git.home.luguber.info/inful/trackmcp/internal/metrics"
	"git.home.luguber.info/inful/trackmcp/internal/server/responses"
	"git.home.luguber.info/inful/trackmcp/internal/tools"
	"git.home.luguber.info/inful/trackmcp/internal/version"
)

// Runtime exposes the server-level state handlers report on.
type Runtime interface {
	GetStartTime() time.Time
	BaseURL() string
	DatabasePath() string
	CachedProjects() ([]string, time.Time)
	SSEClients() int
	NotifyConnected() bool
}

// APIHandlers contains the info, health, schema and tool-call handlers.
type APIHandlers struct {
	svc      *tools.Service
	runtime  Runtime
	recorder metrics.Recorder
}

// NewAPIHandlers creates the handler set.
func NewAPIHandlers(svc *tools.Service, runtime Runtime, recorder metrics.Recorder) *APIHandlers {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &APIHandlers{svc: svc, runtime: runtime, recorder: recorder}
}

// HandleInfo serves the service root: name, version and MCP entry points.
func (h *APIHandlers) HandleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	base := strings.TrimRight(h.runtime.BaseURL(), "/")
	info := &responses.InfoResponse{
		Service: "trackmcp",
		Version: version.Version,
		Status:  "ready",
		MCP: responses.MCPEndpoints{
			SSEURL:    base + launch.SSEPath,
			SchemaURL: base + launch.SchemaPath,
		},
		Timestamp: time.Now().UTC(),
	}
	_ = writeJSONPretty(w, r, http.StatusOK, info)
}

// HandleHealth serves the health check endpoint.
func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	projects, refreshed := h.runtime.CachedProjects()
	health := &responses.HealthResponse{
		Status:          "healthy",
		Timestamp:       time.Now().UTC(),
		Version:         version.Version,
		Uptime:          time.Since(h.runtime.GetStartTime()).Seconds(),
		ProjectsCached:  len(projects),
		CacheRefreshed:  refreshed,
		SSEClients:      h.runtime.SSEClients(),
		DatabasePath:    h.runtime.DatabasePath(),
		NotifyConnected: h.runtime.NotifyConnected(),
	}
	_ = writeJSONPretty(w, r, http.StatusOK, health)
}

// HandleSchema serves the MCP tool schema.
func (h *APIHandlers) HandleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	schema := &responses.SchemaResponse{
		Service: "trackmcp",
		Version: version.Version,
		Tools:   tools.Specs(),
	}
	_ = writeJSONPretty(w, r, http.StatusOK, schema)
}

// HandleToolCall invokes a query tool by name. Parameters come from the
// query string and, for POST, from a flat JSON object body; body values win.
func (h *APIHandlers) HandleToolCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		h.methodNotAllowed(w, r, "GET, POST")
		return
	}

	name := r.PathValue("tool")
	params, err := requestParams(r)
	if err != nil {
		_ = writeJSON(w, http.StatusBadRequest, &responses.ErrorResponse{
			Success: false, Error: err.Error(),
		})
		return
	}

	start := time.Now()
	result, found := h.svc.Invoke(r.Context(), name, params)
	if !found {
		_ = writeJSON(w, http.StatusNotFound, &responses.ErrorResponse{
			Success: false, Error: fmt.Sprintf("unknown tool %q", name),
		})
		return
	}
	elapsed := time.Since(start)
	success := envelopeSuccess(result)
	h.recorder.ObserveToolCallDuration(name, elapsed)
	h.recorder.IncToolCall(name, success)
	slog.Debug("tool call completed",
		logfields.Tool(name),
		logfields.Project(params["project"]),
		logfields.Run(params["run"]),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000),
		"success", success)

	// Tool failures still travel as 200 with an error envelope; only the
	// transport reports HTTP-level errors.
	_ = writeJSONPretty(w, r, http.StatusOK, result)
}

func (h *APIHandlers) methodNotAllowed(w http.ResponseWriter, _ *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	_ = writeJSON(w, http.StatusMethodNotAllowed, &responses.ErrorResponse{
		Success: false, Error: "method not allowed",
	})
}

// requestParams flattens query string and JSON body into string parameters.
func requestParams(r *http.Request) (map[string]string, error) {
	params := make(map[string]string)
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	if r.Method == http.MethodPost && r.Body != nil && r.ContentLength != 0 {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		for k, v := range body {
			switch t := v.(type) {
			case string:
				params[k] = t
			case bool:
				params[k] = fmt.Sprintf("%t", t)
			case float64:
				params[k] = strconv.FormatFloat(t, 'f', -1, 64)
			default:
				// Nested values are passed through as JSON text.
				raw, err := json.Marshal(v)
				if err != nil {
					return nil, fmt.Errorf("encode parameter %q: %w", k, err)
				}
				params[k] = string(raw)
			}
		}
	}
	return params, nil
}

// envelopeSuccess inspects a tool result's success flag without knowing its
// concrete type.
func envelopeSuccess(result any) bool {
	type successer interface{ Succeeded() bool }
	if s, ok := result.(successer); ok {
		return s.Succeeded()
	}
	return true
}
