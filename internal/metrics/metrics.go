// Package metrics exposes the service counters on a Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultConflict = "conflict"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	registrations     *prometheus.CounterVec
	logins            *prometheus.CounterVec
	invoicesCreated   prometheus.Counter
	allocations       prometheus.Counter
	allocationGaps    prometheus.Counter
	statusTransitions *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minidebet_registrations_total",
			Help: "Account registrations by result",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minidebet_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		invoicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minidebet_invoices_created_total",
			Help: "Invoices persisted",
		}),
		allocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minidebet_invoice_numbers_allocated_total",
			Help: "Invoice numbers handed out by the sequence allocator",
		}),
		allocationGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minidebet_invoice_number_gaps_total",
			Help: "Allocated invoice numbers that were never persisted",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minidebet_invoice_status_transitions_total",
			Help: "Invoice status changes by target status",
		}, []string{"status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "minidebet_http_request_duration_seconds",
			Help:    "HTTP request duration by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		m.registrations,
		m.logins,
		m.invoicesCreated,
		m.allocations,
		m.allocationGaps,
		m.statusTransitions,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRegistration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordInvoiceCreated() {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc()
}

func (m *Metrics) RecordAllocation() {
	if m == nil {
		return
	}
	m.allocations.Inc()
}

func (m *Metrics) RecordAllocationGap() {
	if m == nil {
		return
	}
	m.allocationGaps.Inc()
}

func (m *Metrics) RecordStatusTransition(status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(status).Inc()
}

// Middleware observes request durations labelled with the chi route
// pattern, so ids in paths do not blow up cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
