// Package metrics exposes Prometheus metrics for chat turns, the inference
// API and the HTTP front end.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/set-night/groqchat/internal/domain"
)

const namespace = "groqchat"

type Collector struct {
	registry *prometheus.Registry

	turns            *prometheus.CounterVec
	inferenceLatency *prometheus.HistogramVec
	tokens           *prometheus.CounterVec
	cost             *prometheus.CounterVec
	sessions         prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewCollector registers all metrics on registry, or on a fresh registry
// with Go and process collectors when registry is nil.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Chat turns by model and outcome.",
		}, []string{"model", "outcome"}),
		inferenceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Latency of inference API calls.",
			// LLM latencies, 100ms to 60s
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens consumed by type.",
		}, []string{"model", "type"}),
		cost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cost_usd_total",
			Help:      "Estimated inference cost in USD.",
		}, []string{"model"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held by the session store.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		c.turns,
		c.inferenceLatency,
		c.tokens,
		c.cost,
		c.sessions,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

// RecordTurn implements service.Recorder.
func (c *Collector) RecordTurn(model, outcome string, duration time.Duration, usage domain.Usage) {
	c.turns.WithLabelValues(model, outcome).Inc()
	c.inferenceLatency.WithLabelValues(model).Observe(duration.Seconds())
	if usage.PromptTokens > 0 {
		c.tokens.WithLabelValues(model, "prompt").Add(float64(usage.PromptTokens))
	}
	if usage.CompletionTokens > 0 {
		c.tokens.WithLabelValues(model, "completion").Add(float64(usage.CompletionTokens))
	}
	if usage.Cost.IsPositive() {
		c.cost.WithLabelValues(model).Add(usage.Cost.InexactFloat64())
	}
}

// SetActiveSessions implements service.SessionGauge.
func (c *Collector) SetActiveSessions(n int64) {
	c.sessions.Set(float64(n))
}

func (c *Collector) RecordHTTP(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
