package tools

import (
	"context"

	"git.home.luguber.info/inful/trackmcp/internal/config"
)

// ParamSpec describes one tool parameter for the schema endpoint.
type ParamSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
}

// ToolSpec describes one tool for the schema endpoint.
type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"parameters"`
}

// Specs returns the schema of every exposed tool, in a stable order.
func Specs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "get_projects",
			Description: "List all trackio projects",
		},
		{
			Name:        "get_runs",
			Description: "List all runs for a project",
			Params: []ParamSpec{
				{Name: "project", Type: "string", Required: true},
			},
		},
		{
			Name:        "filter_runs",
			Description: "Filter runs of a project by substring",
			Params: []ParamSpec{
				{Name: "project", Type: "string", Required: true},
				{Name: "filter", Type: "string"},
			},
		},
		{
			Name:        "get_run_metrics",
			Description: "Get metric records for a run",
			Params: []ParamSpec{
				{Name: "project", Type: "string", Required: true},
				{Name: "run", Type: "string", Required: true},
			},
		},
		{
			Name:        "get_available_metrics",
			Description: "List numeric metric keys across runs of a project",
			Params: []ParamSpec{
				{Name: "project", Type: "string", Required: true},
				{Name: "runs", Type: "string"},
			},
		},
		{
			Name:        "load_run_data",
			Description: "Load run metric rows for plotting, optionally smoothed",
			Params: []ParamSpec{
				{Name: "project", Type: "string", Required: true},
				{Name: "run", Type: "string", Required: true},
				{Name: "smoothing", Type: "bool", Default: "false"},
				{Name: "x_axis", Type: "string", Default: "step"},
			},
		},
		{
			Name:        "get_project_summary",
			Description: "Summarize a project: runs, metric keys, per-run stats",
			Params: []ParamSpec{
				{Name: "project", Type: "string", Required: true},
			},
		},
	}
}

// Invoke dispatches a tool by name with string parameters, as received over
// HTTP. The second return is false when no such tool exists. The returned
// value is always an envelope-shaped result.
func (s *Service) Invoke(ctx context.Context, name string, params map[string]string) (any, bool) {
	switch name {
	case "get_projects":
		return s.GetProjects(ctx), true
	case "get_runs":
		return s.GetRuns(ctx, params["project"]), true
	case "filter_runs":
		return s.FilterRuns(ctx, params["project"], params["filter"]), true
	case "get_run_metrics":
		return s.GetRunMetrics(ctx, params["project"], params["run"]), true
	case "get_available_metrics":
		return s.GetAvailableMetrics(ctx, params["project"], params["runs"]), true
	case "load_run_data":
		xAxis := params["x_axis"]
		smoothing := config.Truthy(params["smoothing"])
		return s.LoadRunData(ctx, params["project"], params["run"], smoothing, xAxis), true
	case "get_project_summary":
		return s.GetProjectSummary(ctx, params["project"]), true
	}
	return nil, false
}
