package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	registry     *prom.Registry
	toolDuration *prom.HistogramVec
	toolCalls    *prom.CounterVec
	httpRequests *prom.CounterVec
	sseClients   prom.Gauge
	runUpdates   prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics
// (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.toolDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "trackmcp",
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of individual tool invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"tool"})
		pr.toolCalls = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "trackmcp",
			Name:      "tool_calls_total",
			Help:      "Tool invocation counts by outcome",
		}, []string{"tool", "result"})
		pr.httpRequests = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "trackmcp",
			Name:      "http_requests_total",
			Help:      "HTTP request counts by path and status",
		}, []string{"path", "status"})
		pr.sseClients = prom.NewGauge(prom.GaugeOpts{
			Namespace: "trackmcp",
			Name:      "sse_clients",
			Help:      "Currently connected SSE clients",
		})
		pr.runUpdates = prom.NewCounter(prom.CounterOpts{
			Namespace: "trackmcp",
			Name:      "run_updates_total",
			Help:      "Run-update notifications emitted from database changes",
		})
		reg.MustRegister(pr.toolDuration, pr.toolCalls, pr.httpRequests, pr.sseClients, pr.runUpdates)
	})
	return pr
}

func (pr *PrometheusRecorder) ObserveToolCallDuration(tool string, d time.Duration) {
	pr.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncToolCall(tool string, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	pr.toolCalls.WithLabelValues(tool, result).Inc()
}

func (pr *PrometheusRecorder) IncHTTPRequest(path string, status int) {
	pr.httpRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

func (pr *PrometheusRecorder) IncSSEClients(delta int) {
	pr.sseClients.Add(float64(delta))
}

func (pr *PrometheusRecorder) IncRunUpdate() {
	pr.runUpdates.Inc()
}

// HTTPHandler returns an http.Handler serving the recorder's registry.
func (pr *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(pr.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
