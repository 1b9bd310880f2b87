package tools

import "git.home.luguber.info/inful/trackmcp/internal/storage"

// envelope is the uniform success/error wrapper shared by every tool result.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Succeeded reports the envelope's success flag; callers that only hold the
// result as any can check the outcome through this method.
func (e envelope) Succeeded() bool { return e.Success }

func ok() envelope { return envelope{Success: true} }

func fail(msg string) envelope { return envelope{Success: false, Error: msg} }

// emptyIfNil keeps list fields serializing as [] instead of null when a
// query legitimately matched nothing.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ProjectsResult is the get_projects tool response.
type ProjectsResult struct {
	envelope
	Projects []string `json:"projects"`
	Count    int      `json:"count"`
}

// RunsResult is the get_runs tool response.
type RunsResult struct {
	envelope
	Project string   `json:"project,omitempty"`
	Runs    []string `json:"runs"`
	Count   int      `json:"count"`
}

// FilteredRunsResult is the filter_runs tool response.
type FilteredRunsResult struct {
	envelope
	Project       string   `json:"project,omitempty"`
	Filter        string   `json:"filter"`
	Runs          []string `json:"runs"`
	TotalRuns     int      `json:"total_runs"`
	FilteredCount int      `json:"filtered_count"`
}

// RunMetricsResult is the get_run_metrics tool response.
type RunMetricsResult struct {
	envelope
	Project string                 `json:"project,omitempty"`
	Run     string                 `json:"run,omitempty"`
	Metrics []storage.MetricRecord `json:"metrics"`
	Count   int                    `json:"count"`
}

// AvailableMetricsResult is the get_available_metrics tool response.
type AvailableMetricsResult struct {
	envelope
	Project string   `json:"project,omitempty"`
	Runs    []string `json:"runs"`
	Metrics []string `json:"metrics"`
	Count   int      `json:"count"`
}

// RunDataResult is the load_run_data tool response.
type RunDataResult struct {
	envelope
	Project   string           `json:"project,omitempty"`
	Run       string           `json:"run,omitempty"`
	XAxis     string           `json:"x_axis,omitempty"`
	Smoothing bool             `json:"smoothing"`
	Data      []map[string]any `json:"data"`
	Rows      int              `json:"rows"`
}

// RunStats summarizes one run inside a project summary.
type RunStats struct {
	MetricCount int `json:"metric_count"`
	Steps       int `json:"steps"`
}

// ProjectSummaryResult is the get_project_summary tool response.
type ProjectSummaryResult struct {
	envelope
	Project     string              `json:"project,omitempty"`
	Runs        []string            `json:"runs"`
	RunCount    int                 `json:"run_count"`
	Metrics     []string            `json:"metrics"`
	MetricCount int                 `json:"metric_count"`
	RunStats    map[string]RunStats `json:"run_stats,omitempty"`
	Summary     string              `json:"summary,omitempty"`
}
