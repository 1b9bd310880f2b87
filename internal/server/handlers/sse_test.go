package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/trackmcp/internal/watch"
)

func TestHandleSSEStreamsEndpointAndRunUpdates(t *testing.T) {
	hub := watch.NewHub()
	h := NewSSEHandlers(hub, stubRuntime{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/gradio_api/mcp/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.HandleSSE(rec, req)
		close(done)
	}()

	// Wait for the handler to subscribe before publishing.
	require.Eventually(t, func() bool { return hub.Len() == 1 },
		5*time.Second, 10*time.Millisecond)

	hub.Publish(watch.NewRunUpdate("/tmp/trackio.db"))
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Contains(t, body, "event: endpoint")
	assert.Contains(t, body, "schema_url")
	assert.Contains(t, body, "event: run_update")
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}

func TestHandleSSERejectsPost(t *testing.T) {
	h := NewSSEHandlers(watch.NewHub(), stubRuntime{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/gradio_api/mcp/sse", nil)
	rec := httptest.NewRecorder()

	h.HandleSSE(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "endpoint"))
}
