// Package metrics exposes Prometheus instruments for the simulation and the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ArbiOps/internal/model"
)

const namespace = "arbiops"

// Metrics holds every instrument on its own registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	TicksTotal        prometheus.Counter
	TickDuration      prometheus.Histogram
	LogSourceFailures prometheus.Counter
	FallbackBatches   prometheus.Counter
	DiscardedBatches  prometheus.Counter
	Status            *prometheus.GaugeVec
	TotalProfit       prometheus.Gauge
	ROI               prometheus.Gauge
	WSClients         prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	BackgroundJobs    *prometheus.CounterVec
}

// New creates and registers all instruments.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "simulation", Name: "ticks_total",
			Help: "Simulation ticks applied",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "simulation", Name: "tick_duration_seconds",
			Help: "Wall time of one tick including the log request", Buckets: prometheus.DefBuckets,
		}),
		LogSourceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "logstream", Name: "failures_total",
			Help: "Log source requests that failed",
		}),
		FallbackBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "logstream", Name: "fallback_batches_total",
			Help: "Ticks that used the fallback log lines",
		}),
		DiscardedBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "simulation", Name: "discarded_ticks_total",
			Help: "Ticks whose results arrived after the run was stopped",
		}),
		Status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "simulation", Name: "status",
			Help: "1 for the current system status",
		}, []string{"status"}),
		TotalProfit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "simulation", Name: "total_profit",
			Help: "Simulated running profit",
		}),
		ROI: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "simulation", Name: "roi_percent",
			Help: "Simulated ROAS",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "websocket_clients",
			Help: "Connected snapshot stream clients",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request duration", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BackgroundJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "jobs_total",
			Help: "Background job runs by job and result",
		}, []string{"job", "result"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TicksTotal, m.TickDuration, m.LogSourceFailures, m.FallbackBatches,
		m.DiscardedBatches, m.Status, m.TotalProfit, m.ROI, m.WSClients,
		m.HTTPRequests, m.HTTPDuration, m.BackgroundJobs,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveTick records one applied tick.
func (m *Metrics) ObserveTick(d time.Duration, snap *model.Snapshot) {
	if m == nil {
		return
	}
	m.TicksTotal.Inc()
	m.TickDuration.Observe(d.Seconds())
	m.TotalProfit.Set(snap.Totals.TotalProfit)
	m.ROI.Set(snap.Totals.ROI)
}

// ObserveLogFailure records a failed log request.
func (m *Metrics) ObserveLogFailure() {
	if m == nil {
		return
	}
	m.LogSourceFailures.Inc()
}

// ObserveFallback records an applied tick that used the fallback lines.
func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.FallbackBatches.Inc()
}

// ObserveDiscard records a tick dropped because its run was cancelled.
func (m *Metrics) ObserveDiscard() {
	if m == nil {
		return
	}
	m.DiscardedBatches.Inc()
}

// SetStatus flips the status gauge.
func (m *Metrics) SetStatus(s model.SystemStatus) {
	if m == nil {
		return
	}
	for _, st := range []model.SystemStatus{model.StatusIdle, model.StatusActive, model.StatusPaused} {
		v := 0.0
		if st == s {
			v = 1
		}
		m.Status.WithLabelValues(string(st)).Set(v)
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveJob records a background job run.
func (m *Metrics) ObserveJob(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.BackgroundJobs.WithLabelValues(job, result).Inc()
}

// ClientConnected and ClientDisconnected track the websocket gauge.
func (m *Metrics) ClientConnected() {
	if m != nil {
		m.WSClients.Inc()
	}
}

func (m *Metrics) ClientDisconnected() {
	if m != nil {
		m.WSClients.Dec()
	}
}
