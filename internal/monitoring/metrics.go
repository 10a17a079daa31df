// Package monitoring exposes Prometheus metrics for the dashboard.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sentiboard"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	Acquisitions  *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	PostsLabeled  *prometheus.CounterVec
	Exports       *prometheus.CounterVec
	ArchiveWrites *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisitions_total",
			Help:      "Post acquisitions by source and result",
		}, []string{"source", "result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reddit_fetch_duration_seconds",
			Help:      "Duration of Reddit fetches including labeling",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		PostsLabeled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_labeled_total",
			Help:      "Labeled posts by label and scorer",
		}, []string{"label", "source"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports by format and result",
		}, []string{"format", "result"}),
		ArchiveWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_writes_total",
			Help:      "Archive sink writes by sink and result",
		}, []string{"sink", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.Acquisitions,
		m.FetchDuration,
		m.PostsLabeled,
		m.Exports,
		m.ArchiveWrites,
	)
	return m
}

// RegisterSessionGauge reports the live session count at scrape time.
func (m *Metrics) RegisterSessionGauge(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Sessions currently tracked",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
