package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for the catalog service.
type Metrics struct {
	Registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	OperationsTotal  *prometheus.CounterVec
	LendingRejected  *prometheus.CounterVec
	MaintenanceState prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_http_requests_total",
			Help: "Total HTTP requests served by status code and method.",
		},
		[]string{"code", "method"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_http_request_duration_seconds",
			Help:    "HTTP request processing latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_catalog_operations_total",
			Help: "Total successful catalog mutations by operation.",
		},
		[]string{"operation"},
	)
	rejected := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_lending_rejected_total",
			Help: "Total borrow or return attempts rejected because of the book state.",
		},
		[]string{"operation"},
	)
	maintenance := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_maintenance_enabled",
			Help: "Set to 1 while the maintenance mode is enabled.",
		},
	)

	registry.MustRegister(requests, requestDuration, operations, rejected, maintenance)

	return &Metrics{
		Registry:         registry,
		RequestsTotal:    requests,
		RequestDuration:  requestDuration,
		OperationsTotal:  operations,
		LendingRejected:  rejected,
		MaintenanceState: maintenance,
	}
}

// ObserveRequest records a served request.
func (m *Metrics) ObserveRequest(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(strconv.Itoa(code), method).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// IncCatalogOperation increments the successful mutations counter.
func (m *Metrics) IncCatalogOperation(op string) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(op).Inc()
}

// IncLendingRejected increments the rejected lending transitions counter.
func (m *Metrics) IncLendingRejected(op string) {
	if m == nil {
		return
	}
	m.LendingRejected.WithLabelValues(op).Inc()
}

// SetMaintenance reflects the maintenance mode status.
func (m *Metrics) SetMaintenance(enabled bool) {
	if m == nil {
		return
	}
	if enabled {
		m.MaintenanceState.Set(1)
		return
	}
	m.MaintenanceState.Set(0)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() httprouter.Handle {
	if m == nil {
		return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			http.Error(w, "metrics are not collected", http.StatusNotFound)
		}
	}
	h := promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}
