package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorCount      *prometheus.CounterVec

	CasesOpened          prometheus.Counter
	StageChanges         *prometheus.CounterVec
	ReferralsCreated     prometheus.Counter
	ReferralTransitions  *prometheus.CounterVec
	DiasporasRegistered  prometheus.Counter
	DiasporaIDCollisions prometheus.Counter
	ReportDuration       *prometheus.HistogramVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestCount: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diaspora_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diaspora_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ErrorCount: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diaspora_http_errors_total",
			Help: "Error responses by route, method and error code",
		}, []string{"route", "method", "code"}),
		CasesOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "diaspora_cases_opened_total",
			Help: "Cases opened",
		}),
		StageChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diaspora_case_stage_changes_total",
			Help: "Case stage changes by target stage and direction",
		}, []string{"stage", "backward"}),
		ReferralsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "diaspora_referrals_created_total",
			Help: "Referrals created",
		}),
		ReferralTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diaspora_referral_status_changes_total",
			Help: "Referral status changes by target status",
		}, []string{"status"}),
		DiasporasRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "diaspora_registrations_total",
			Help: "Diaspora registrations",
		}),
		DiasporaIDCollisions: f.NewCounter(prometheus.CounterOpts{
			Name: "diaspora_id_collisions_total",
			Help: "Generated diaspora ids rejected by the unique constraint",
		}),
		ReportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diaspora_report_duration_seconds",
			Help:    "Report computation latency by report",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"report"}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestCount.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.ErrorCount.WithLabelValues(route, method, code).Inc()
}

// ObserveReport records how long a report took to compute.
func (m *Metrics) ObserveReport(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.ReportDuration.WithLabelValues(report).Observe(d.Seconds())
}

// IncrementIDCollision counts a diaspora id retry.
func (m *Metrics) IncrementIDCollision() {
	if m == nil {
		return
	}
	m.DiasporaIDCollisions.Inc()
}
