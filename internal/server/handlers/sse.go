package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/trackmcp/internal/launch"
	"git.home.luguber.info/inful/trackmcp/internal/logfields"
	"git.home.luguber.info/inful/trackmcp/internal/metrics"
	"git.home.luguber.info/inful/trackmcp/internal/watch"
)

const heartbeatInterval = 15 * time.Second

// SSEHandlers streams MCP events to connected clients: an initial endpoint
// event, periodic heartbeats, and run-update events from the database
// watcher.
type SSEHandlers struct {
	hub      *watch.Hub
	runtime  Runtime
	recorder metrics.Recorder
}

// NewSSEHandlers creates the SSE handler set.
func NewSSEHandlers(hub *watch.Hub, runtime Runtime, recorder metrics.Recorder) *SSEHandlers {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &SSEHandlers{hub: hub, runtime: runtime, recorder: recorder}
}

// HandleSSE serves the event stream endpoint.
func (h *SSEHandlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	clientID := uuid.NewString()
	h.recorder.IncSSEClients(1)
	defer h.recorder.IncSSEClients(-1)
	slog.Info("SSE client connected",
		logfields.ClientID(clientID), logfields.RemoteAddr(r.RemoteAddr))
	defer slog.Info("SSE client disconnected", logfields.ClientID(clientID))

	// Initial endpoint event tells the client where to call tools.
	endpoint := map[string]string{
		"client_id":  clientID,
		"schema_url": h.runtime.BaseURL() + launch.SchemaPath,
	}
	if err := writeSSEEvent(w, "endpoint", endpoint); err != nil {
		return
	}
	flusher.Flush()

	events, cancel := h.hub.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			if err := writeSSEEvent(w, "run_update", ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
