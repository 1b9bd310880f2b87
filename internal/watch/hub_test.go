package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	ch1, cancel1 := hub.Subscribe()
	ch2, cancel2 := hub.Subscribe()
	defer cancel1()
	defer cancel2()

	ev := NewRunUpdate("/tmp/trackio.db")
	hub.Publish(ev)

	got1 := <-ch1
	got2 := <-ch2
	assert.Equal(t, ev.ID, got1.ID)
	assert.Equal(t, ev.ID, got2.ID)
	assert.NotEmpty(t, ev.ID)
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe()
	assert.Equal(t, 1, hub.Len())
	cancel()
	cancel() // second cancel is a no-op
	assert.Equal(t, 0, hub.Len())
}

func TestHubDoesNotBlockOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// More events than the subscriber buffer holds.
		for range 64 {
			hub.Publish(NewRunUpdate("/tmp/trackio.db"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a lagging subscriber")
	}
}

func TestWatcherPublishesOnDatabaseWrite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "trackio.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("seed"), 0o644))

	hub := NewHub()
	w, err := NewWatcher(dbPath, hub, nil)
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	ch, unsub := hub.Subscribe()
	defer unsub()

	require.NoError(t, os.WriteFile(dbPath, []byte("changed"), 0o644))

	select {
	case ev := <-ch:
		assert.Equal(t, dbPath, ev.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no run update after database write")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "trackio.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("seed"), 0o644))

	hub := NewHub()
	w, err := NewWatcher(dbPath, hub, nil)
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	ch, unsub := hub.Subscribe()
	defer unsub()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case ev := <-ch:
		t.Fatalf("unexpected update for unrelated file: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "trackio.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("seed"), 0o644))

	w, err := NewWatcher(dbPath, NewHub(), nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
