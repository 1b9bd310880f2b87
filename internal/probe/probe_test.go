package probe

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAgainstHealthyServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/gradio_api/mcp/sse", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/gradio_api/mcp/schema", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tools": []map[string]string{
				{"name": "get_projects"},
				{"name": "get_runs"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	report := New(5*time.Second).Run(context.Background(), srv.URL+"/")

	assert.True(t, report.Reachable)
	assert.Equal(t, http.StatusOK, report.SSEStatus)
	assert.Equal(t, http.StatusOK, report.SchemaStatus)
	assert.Equal(t, 2, report.ToolCount)
	assert.Equal(t, []string{"get_projects", "get_runs"}, report.ToolNames)
}

func TestRunAgainstDeadServer(t *testing.T) {
	// Grab a port and close it so nothing listens there.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	report := New(time.Second).Run(context.Background(), url)

	assert.False(t, report.Reachable)
	assert.False(t, report.Connected())
	assert.NotEmpty(t, report.BaseError)
}

func TestRunSingleAttemptPerCheck(t *testing.T) {
	// A listener that drops every accepted connection produces a connection
	// error on each check. Three checks must mean exactly three dials.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	var accepts atomic.Int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepts.Add(1)
			conn.Close()
		}
	}()

	report := New(time.Second).Run(context.Background(), "http://"+ln.Addr().String())

	assert.False(t, report.Connected())
	assert.NotEmpty(t, report.BaseError)
	assert.EqualValues(t, 3, accepts.Load())
}

func TestRunErrorStatusStillConnected(t *testing.T) {
	var baseHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		baseHits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	report := New(time.Second).Run(context.Background(), srv.URL)

	assert.False(t, report.Reachable)
	assert.True(t, report.Connected())
	assert.Empty(t, report.BaseError)
	assert.Equal(t, http.StatusServiceUnavailable, report.BaseStatus)
	assert.EqualValues(t, 1, baseHits.Load())
}

func TestSummaryMentionsOutcome(t *testing.T) {
	report := Report{
		BaseURL:      "http://localhost:7860",
		Reachable:    true,
		BaseStatus:   http.StatusOK,
		SSEStatus:    http.StatusOK,
		SchemaStatus: http.StatusOK,
		ToolCount:    5,
		ToolNames:    []string{"a", "b", "c", "d", "e"},
	}
	lines := report.Summary()
	require.NotEmpty(t, lines)

	joined := ""
	for _, l := range lines {
		joined += l + "\n"
	}
	assert.Contains(t, joined, "server is reachable")
	assert.Contains(t, joined, "schema available with 5 tools")
	assert.Contains(t, joined, "... and 2 more")
	assert.Contains(t, joined, "/gradio_api/mcp/sse")
}
