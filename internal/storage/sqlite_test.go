package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, s *SQLiteStore, project, run string, step int, metrics string) {
	t.Helper()
	_, err := s.db.Exec(
		"INSERT INTO metrics (project_name, run_name, timestamp, step, metrics) VALUES (?, ?, ?, ?, ?)",
		project, run, "2026-08-30T12:00:00", step, metrics)
	require.NoError(t, err)
}

func TestProjectsEmpty(t *testing.T) {
	store := newTestStore(t)

	projects, err := store.Projects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectsDistinctSorted(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "zebra", "r1", 0, `{"loss": 1.0}`)
	seed(t, store, "alpha", "r1", 0, `{"loss": 0.5}`)
	seed(t, store, "alpha", "r2", 0, `{"loss": 0.4}`)

	projects, err := store.Projects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zebra"}, projects)
}

func TestRunsForProject(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "alpha", "r2", 0, `{"loss": 0.4}`)
	seed(t, store, "alpha", "r1", 0, `{"loss": 0.5}`)
	seed(t, store, "alpha", "r1", 1, `{"loss": 0.3}`)
	seed(t, store, "other", "x", 0, `{"loss": 9.0}`)

	runs, err := store.Runs(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, runs)
}

func TestMetricsOrderAndPayload(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "alpha", "r1", 0, `{"loss": 0.5, "accuracy": 0.7}`)
	seed(t, store, "alpha", "r1", 1, `{"loss": 0.3, "accuracy": 0.8}`)

	records, err := store.Metrics(context.Background(), "alpha", "r1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 0, records[0].Step)
	assert.Equal(t, 1, records[1].Step)
	assert.InDelta(t, 0.5, records[0].Values["loss"], 1e-9)
	assert.InDelta(t, 0.8, records[1].Values["accuracy"], 1e-9)
}

func TestMetricsUnknownRunIsEmpty(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "alpha", "r1", 0, `{"loss": 0.5}`)

	records, err := store.Metrics(context.Background(), "alpha", "nope")
	require.NoError(t, err)
	assert.Empty(t, records)
}
