package daemon

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build many servers in one
// process without duplicate registration panics.
type Metrics struct {
	registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ChatOps         *prometheus.CounterVec
	MessagesTotal   prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termchat_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "termchat_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
		ChatOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termchat_chat_operations_total",
				Help: "Chat collection operations by kind and outcome",
			},
			[]string{"op", "outcome"},
		),
		MessagesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "termchat_messages_total",
				Help: "Messages accepted by POST /api/chat",
			},
		),
	}
	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ChatOps,
		m.MessagesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRequest(method, path string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	path = metricPath(path)
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(latency.Seconds())
}

func (m *Metrics) recordChatOp(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ChatOps.WithLabelValues(op, outcome).Inc()
}

// metricPath keeps label cardinality bounded to the routes we serve.
func metricPath(path string) string {
	switch path {
	case "/health", "/metrics", "/api/chats", "/api/chat", "/api/shutdown":
		return path
	}
	return "other"
}
