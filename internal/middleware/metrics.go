package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the API and the analyzer.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestSeconds   *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	AnalysesTotal   *prometheus.CounterVec
	AnalysisSeconds *prometheus.HistogramVec
	AITokensTotal   *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetnotes_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meetnotes_http_request_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "meetnotes_http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
		),
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetnotes_analyses_total",
				Help: "Meeting analyses by path, model and outcome",
			},
			[]string{"path", "model", "outcome"},
		),
		AnalysisSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meetnotes_analysis_seconds",
				Help:    "Time spent producing one analysis",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"path"},
		),
		AITokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetnotes_ai_tokens_total",
				Help: "Tokens reported by the AI provider",
			},
			[]string{"model", "type"},
		),
	}
}

// ObserveAnalysis records one orchestrator run.
func (m *Metrics) ObserveAnalysis(path, model, outcome string, promptTokens, completionTokens int, took time.Duration) {
	if model == "" {
		model = "unknown"
	}
	m.AnalysesTotal.WithLabelValues(path, model, outcome).Inc()
	m.AnalysisSeconds.WithLabelValues(path).Observe(took.Seconds())
	if promptTokens > 0 {
		m.AITokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.AITokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}

// Middleware tracks request metrics. Routes are labelled by chi pattern so
// ids do not blow up cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.RequestSeconds.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// MetricsHandler serves the Prometheus exposition format.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
