// Package metrics defines observability hooks for the tool server.
package metrics

import "time"

// Recorder defines observability hooks for tool calls and HTTP traffic.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveToolCallDuration(tool string, d time.Duration)
	IncToolCall(tool string, success bool)
	IncHTTPRequest(path string, status int)
	IncSSEClients(delta int)
	IncRunUpdate()
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveToolCallDuration(string, time.Duration) {}
func (NoopRecorder) IncToolCall(string, bool)                      {}
func (NoopRecorder) IncHTTPRequest(string, int)                    {}
func (NoopRecorder) IncSSEClients(int)                             {}
func (NoopRecorder) IncRunUpdate()                                 {}
