package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	NewsRequestsTotal   *prometheus.CounterVec
	NewsRequestDuration *prometheus.HistogramVec

	UsersRegisteredTotal prometheus.Counter
}

// New registers the collectors in the default registry; call it once per process.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsquery_requests_total",
				Help: "Total number of user requests processed",
			},
			[]string{"surface", "operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsquery_request_duration_seconds",
				Help:    "User request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"surface", "operation"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "newsquery_requests_in_flight",
				Help: "Number of requests currently being processed",
			},
		),

		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsquery_llm_requests_total",
				Help: "Total number of completion requests",
			},
			[]string{"operation", "model", "status"},
		),
		LLMRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsquery_llm_request_duration_seconds",
				Help:    "Completion request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"operation", "model"},
		),

		NewsRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsquery_news_requests_total",
				Help: "Total number of news backend requests",
			},
			[]string{"endpoint", "status"},
		),
		NewsRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsquery_news_request_duration_seconds",
				Help:    "News backend request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		),

		UsersRegisteredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "newsquery_users_registered_total",
				Help: "Total number of newly registered bot users",
			},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordRequest(surface, operation, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(surface, operation, status).Inc()
	m.RequestDuration.WithLabelValues(surface, operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMRequest(operation, model, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(operation, model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(operation, model).Observe(duration.Seconds())
}

func (m *Metrics) RecordNewsRequest(endpoint, status string, duration time.Duration) {
	m.NewsRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.NewsRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) RecordUserRegistered() {
	m.UsersRegisteredTotal.Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
