// Package metrics exposes request, upload, download and login counters in
// Prometheus format. Each Metrics owns its registry so tests stay isolated.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notesbuzz"

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploads         prometheus.Counter
	uploadBytes     prometheus.Counter
	uploadErrors    prometheus.Counter
	downloads       prometheus.Counter
	downloadBytes   prometheus.Counter
	logins          *prometheus.CounterVec
	signups         prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Files stored.",
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes stored.",
		}),
		uploadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_errors_total",
			Help:      "Uploads that failed in the store.",
		}),
		downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Completed downloads.",
		}),
		downloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes streamed to clients.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Accounts created.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.uploads,
		m.uploadBytes,
		m.uploadErrors,
		m.downloads,
		m.downloadBytes,
		m.logins,
		m.signups,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) RecordUpload(bytes int64) {
	m.uploads.Inc()
	m.uploadBytes.Add(float64(bytes))
}

func (m *Metrics) RecordUploadError() { m.uploadErrors.Inc() }

func (m *Metrics) RecordDownload(bytes int64) {
	m.downloads.Inc()
	m.downloadBytes.Add(float64(bytes))
}

// RecordLogin counts one attempt; result is LoginSuccess, LoginFailure or
// LoginError.
func (m *Metrics) RecordLogin(result string) {
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordSignup() { m.signups.Inc() }
