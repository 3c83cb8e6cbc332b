package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// IRecorder is what use cases and middleware record through.
type IRecorder interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
	ObserveUsecase(usecase string, start time.Time, err error)
	ObserveExternal(provider, operation string, start time.Time, err error)
}

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry         *prometheus.Registry
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	usecaseRequests  *prometheus.CounterVec
	usecaseDuration  *prometheus.HistogramVec
	externalRequests *prometheus.CounterVec
	externalDuration *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		usecaseRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "usecase_requests_total", Help: "Use case invocations by outcome.",
		}, []string{"usecase", "outcome"}),
		usecaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "usecase_duration_seconds", Help: "Use case latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"usecase"}),
		externalRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "external_requests_total", Help: "Payment gateway calls by outcome.",
		}, []string{"provider", "operation", "outcome"}),
		externalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds", Help: "Payment gateway latency.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "operation"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.usecaseRequests, m.usecaseDuration,
		m.externalRequests, m.externalDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveUsecase(usecase string, start time.Time, err error) {
	m.usecaseRequests.WithLabelValues(usecase, outcome(err)).Inc()
	m.usecaseDuration.WithLabelValues(usecase).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveExternal(provider, operation string, start time.Time, err error) {
	m.externalRequests.WithLabelValues(provider, operation, outcome(err)).Inc()
	m.externalDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveHTTP(string, string, int, time.Duration)   {}
func (Nop) ObserveUsecase(string, time.Time, error)          {}
func (Nop) ObserveExternal(string, string, time.Time, error) {}

var (
	_ IRecorder = (*Metrics)(nil)
	_ IRecorder = Nop{}
)
