// Package tools implements the read-only MCP query surface over trackio
// experiment data. Every tool validates its required parameters, delegates
// to the storage layer and shapes the outcome into a uniform success/error
// envelope; tools never return a Go error and never panic outward.
package tools

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"git.home.luguber.info/inful/trackmcp/internal/storage"
)

const (
	errProjectRequired    = "Project name is required"
	errProjectRunRequired = "Both project and run names are required"
)

// Service exposes the query tools over a Store.
type Service struct {
	store storage.Store
}

// NewService creates a tool service backed by store.
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// GetProjects lists all tracked projects.
func (s *Service) GetProjects(ctx context.Context) ProjectsResult {
	projects, err := s.store.Projects(ctx)
	if err != nil {
		return ProjectsResult{envelope: fail(err.Error())}
	}
	return ProjectsResult{envelope: ok(), Projects: emptyIfNil(projects), Count: len(projects)}
}

// GetRuns lists the runs of a project.
func (s *Service) GetRuns(ctx context.Context, project string) RunsResult {
	if project == "" {
		return RunsResult{envelope: fail(errProjectRequired)}
	}
	runs, err := s.store.Runs(ctx, project)
	if err != nil {
		return RunsResult{envelope: fail(err.Error())}
	}
	return RunsResult{envelope: ok(), Project: project, Runs: emptyIfNil(runs), Count: len(runs)}
}

// FilterRuns lists the runs of a project whose name contains filter,
// case-insensitively. An empty filter matches everything.
func (s *Service) FilterRuns(ctx context.Context, project, filter string) FilteredRunsResult {
	if project == "" {
		return FilteredRunsResult{envelope: fail(errProjectRequired)}
	}
	all, err := s.store.Runs(ctx, project)
	if err != nil {
		return FilteredRunsResult{envelope: fail(err.Error())}
	}
	filtered := all
	if filter != "" {
		needle := strings.ToLower(filter)
		filtered = nil
		for _, r := range all {
			if strings.Contains(strings.ToLower(r), needle) {
				filtered = append(filtered, r)
			}
		}
	}
	return FilteredRunsResult{
		envelope:      ok(),
		Project:       project,
		Filter:        filter,
		Runs:          emptyIfNil(filtered),
		TotalRuns:     len(all),
		FilteredCount: len(filtered),
	}
}

// GetRunMetrics returns the metric records of a run.
func (s *Service) GetRunMetrics(ctx context.Context, project, run string) RunMetricsResult {
	if project == "" || run == "" {
		return RunMetricsResult{envelope: fail(errProjectRunRequired)}
	}
	records, err := s.store.Metrics(ctx, project, run)
	if err != nil {
		return RunMetricsResult{envelope: fail(err.Error())}
	}
	return RunMetricsResult{
		envelope: ok(),
		Project:  project,
		Run:      run,
		Metrics:  emptyIfNil(records),
		Count:    len(records),
	}
}

// GetAvailableMetrics returns the distinct numeric metric keys across runs of
// a project. runs may be a JSON array, a comma separated list, or empty to
// mean every run.
func (s *Service) GetAvailableMetrics(ctx context.Context, project, runs string) AvailableMetricsResult {
	if project == "" {
		return AvailableMetricsResult{envelope: fail(errProjectRequired)}
	}

	runList := parseRunList(runs)
	if len(runList) == 0 {
		var err error
		runList, err = s.store.Runs(ctx, project)
		if err != nil {
			return AvailableMetricsResult{envelope: fail(err.Error())}
		}
	}

	keys := make(map[string]struct{})
	for _, run := range runList {
		records, err := s.store.Metrics(ctx, project, run)
		if err != nil {
			return AvailableMetricsResult{envelope: fail(err.Error())}
		}
		for _, rec := range records {
			for k, v := range rec.Values {
				if isNumericMetric(k, v) {
					keys[k] = struct{}{}
				}
			}
		}
	}

	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	slices.Sort(names)

	return AvailableMetricsResult{
		envelope: ok(),
		Project:  project,
		Runs:     emptyIfNil(runList),
		Metrics:  names,
		Count:    len(names),
	}
}

// LoadRunData returns a run's metric rows shaped for plotting, keyed by the
// requested x axis and optionally smoothed.
func (s *Service) LoadRunData(ctx context.Context, project, run string, smoothing bool, xAxis string) RunDataResult {
	if project == "" || run == "" {
		return RunDataResult{envelope: fail(errProjectRunRequired)}
	}
	if xAxis == "" {
		xAxis = "step"
	}

	records, err := s.store.Metrics(ctx, project, run)
	if err != nil {
		return RunDataResult{envelope: fail(err.Error())}
	}
	if len(records) == 0 {
		return RunDataResult{envelope: fail("No data found for the specified run")}
	}

	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := map[string]any{
			"step":      rec.Step,
			"timestamp": rec.Timestamp,
		}
		for k, v := range rec.Values {
			row[k] = v
		}
		rows = append(rows, row)
	}
	if smoothing {
		smoothRows(rows)
	}

	return RunDataResult{
		envelope:  ok(),
		Project:   project,
		Run:       run,
		XAxis:     xAxis,
		Smoothing: smoothing,
		Data:      rows,
		Rows:      len(rows),
	}
}

// GetProjectSummary aggregates runs, metric keys and per-run stats for a
// project.
func (s *Service) GetProjectSummary(ctx context.Context, project string) ProjectSummaryResult {
	if project == "" {
		return ProjectSummaryResult{envelope: fail(errProjectRequired)}
	}

	runs, err := s.store.Runs(ctx, project)
	if err != nil {
		return ProjectSummaryResult{envelope: fail(err.Error())}
	}
	if len(runs) == 0 {
		return ProjectSummaryResult{
			envelope: ok(),
			Project:  project,
			Runs:     []string{},
			Metrics:  []string{},
			Summary:  "No runs found in this project",
		}
	}

	keys := make(map[string]struct{})
	stats := make(map[string]RunStats, len(runs))
	for _, run := range runs {
		records, err := s.store.Metrics(ctx, project, run)
		if err != nil {
			return ProjectSummaryResult{envelope: fail(err.Error())}
		}
		steps := make(map[int]struct{})
		for _, rec := range records {
			steps[rec.Step] = struct{}{}
			for k, v := range rec.Values {
				if isNumericMetric(k, v) {
					keys[k] = struct{}{}
				}
			}
		}
		stats[run] = RunStats{MetricCount: len(records), Steps: len(steps)}
	}

	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	slices.Sort(names)

	return ProjectSummaryResult{
		envelope:    ok(),
		Project:     project,
		Runs:        runs,
		RunCount:    len(runs),
		Metrics:     names,
		MetricCount: len(names),
		RunStats:    stats,
	}
}

// parseRunList accepts a JSON string array or a comma separated list.
func parseRunList(runs string) []string {
	runs = strings.TrimSpace(runs)
	if runs == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(runs), &list); err == nil {
		return list
	}
	for _, part := range strings.Split(runs, ",") {
		if p := strings.TrimSpace(part); p != "" {
			list = append(list, p)
		}
	}
	return list
}

// isNumericMetric reports whether a logged value counts as a plottable
// metric. Step and timestamp are axis fields, not metrics.
func isNumericMetric(key string, v any) bool {
	if key == "step" || key == "timestamp" {
		return false
	}
	switch v.(type) {
	case float64, int, int64:
		return true
	}
	return false
}

// smoothingWeight matches the dashboard's exponential moving average.
const smoothingWeight = 0.9

// smoothRows applies an EMA over every numeric column, in place.
func smoothRows(rows []map[string]any) {
	prev := make(map[string]float64)
	for _, row := range rows {
		for k, v := range row {
			f, isFloat := v.(float64)
			if !isFloat || k == "step" || k == "timestamp" {
				continue
			}
			if last, seen := prev[k]; seen {
				f = last*smoothingWeight + f*(1-smoothingWeight)
			}
			prev[k] = f
			row[k] = f
		}
	}
}
