package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
	reportsGenerated *prometheus.CounterVec
	storeErrors      prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "consultancy_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consultancy_http_requests_total",
				Help: "Total HTTP requests by route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		reportsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consultancy_reports_generated_total",
				Help: "Total documents generated by kind.",
			},
			[]string{"kind"},
		),
		storeErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "consultancy_store_unavailable_total",
				Help: "Requests rejected because the persistent store was unavailable.",
			},
		),
	}
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
}

func (m *Metrics) IncrReport(kind string) {
	m.reportsGenerated.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrStoreUnavailable() {
	m.storeErrors.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
