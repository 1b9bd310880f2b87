// Package storage provides read-only access to the trackio experiment
// database. The writing side belongs to trackio itself; trackmcp only ever
// queries.
package storage

import "context"

// MetricRecord is one logged metrics row for a run. Values holds the metric
// payload as logged (numbers, strings, nested structures).
type MetricRecord struct {
	Timestamp string         `json:"timestamp"`
	Step      int            `json:"step"`
	Values    map[string]any `json:"values"`
}

// Store is the query boundary consumed by the tool surface.
type Store interface {
	// Projects returns the distinct project names, sorted.
	Projects(ctx context.Context) ([]string, error)
	// Runs returns the distinct run names for a project, sorted.
	Runs(ctx context.Context, project string) ([]string, error)
	// Metrics returns the metric records for a run in insertion order.
	Metrics(ctx context.Context, project, run string) ([]MetricRecord, error)
	Close() error
}
