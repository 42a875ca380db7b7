package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
)

// Metrics groups the service collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	listingScreenings *prometheus.CounterVec
	logScans          *prometheus.CounterVec
	alerts            *prometheus.CounterVec
	classifyDur       *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}
	m.listingScreenings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prophub",
		Name:      "listing_screenings_total",
		Help:      "Listing authenticity screenings by outcome",
	}, []string{"outcome"})
	m.logScans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prophub",
		Name:      "log_scans_total",
		Help:      "Security log scans by outcome",
	}, []string{"outcome"})
	m.alerts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prophub",
		Name:      "security_alerts_total",
		Help:      "Security alerts produced by category and severity",
	}, []string{"category", "severity"})
	m.classifyDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prophub",
		Name:      "classifier_request_duration_seconds",
		Help:      "Time spent waiting on the classification service",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"task", "cause"})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prophub",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern and status code",
	}, []string{"route", "code"})

	m.Registry.MustRegister(
		m.listingScreenings, m.logScans, m.alerts, m.classifyDur, m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ListingScreened counts one screening. outcome is verified|flagged|uncertain|fallback.
func (m *Metrics) ListingScreened(outcome string) {
	if m == nil {
		return
	}
	m.listingScreenings.WithLabelValues(outcome).Inc()
}

// LogScanned counts one scan cycle and the alerts it produced.
func (m *Metrics) LogScanned(outcome string, alerts []domain.SecurityAlert) {
	if m == nil {
		return
	}
	m.logScans.WithLabelValues(outcome).Inc()
	for _, a := range alerts {
		m.alerts.WithLabelValues(string(a.Category), string(a.Severity)).Inc()
	}
}

func (m *Metrics) ObserveClassify(task, cause string, d time.Duration) {
	if m == nil {
		return
	}
	m.classifyDur.WithLabelValues(task, cause).Observe(d.Seconds())
}

func (m *Metrics) HTTPRequest(route string, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, code).Inc()
}

// Counters exposed for tests.

func (m *Metrics) ListingScreenings() *prometheus.CounterVec { return m.listingScreenings }
func (m *Metrics) LogScans() *prometheus.CounterVec          { return m.logScans }
func (m *Metrics) Alerts() *prometheus.CounterVec            { return m.alerts }
func (m *Metrics) HTTPRequests() *prometheus.CounterVec      { return m.httpRequests }
