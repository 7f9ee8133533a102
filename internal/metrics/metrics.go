// If you are AI: This file holds the Prometheus counters and gauges exported on /metrics.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the relay server.
type Metrics struct {
	registry       *prometheus.Registry
	accepted       prometheus.Counter
	bytesIn        prometheus.Counter
	bytesOut       prometheus.Counter
	requestsTotal  prometheus.Counter
	errorsTotal    prometheus.Counter
	sessions       prometheus.Gauge
	publishers     prometheus.Gauge
	transcodeTasks prometheus.Gauge
	acceptedValue  *counterValue
	bytesInValue   *counterValue
	bytesOutValue  *counterValue
}

// New creates and registers the relay metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relaycast_connections_accepted_total",
			Help: "Total number of accepted RTMP connections",
		}),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relaycast_bytes_in_total",
			Help: "Total bytes read from RTMP sockets",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relaycast_bytes_out_total",
			Help: "Total bytes written to RTMP sockets",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relaycast_http_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relaycast_http_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relaycast_sessions",
			Help: "Number of connected RTMP sessions",
		}),
		publishers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relaycast_publishers",
			Help: "Number of live stream paths",
		}),
		transcodeTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relaycast_transcode_tasks",
			Help: "Number of running ffmpeg transcode tasks",
		}),
		acceptedValue: &counterValue{},
		bytesInValue:  &counterValue{},
		bytesOutValue: &counterValue{},
	}

	registry.MustRegister(
		m.accepted,
		m.bytesIn,
		m.bytesOut,
		m.requestsTotal,
		m.errorsTotal,
		m.sessions,
		m.publishers,
		m.transcodeTasks,
	)
	return m
}

// IncAccepted counts one accepted connection.
func (m *Metrics) IncAccepted() {
	m.accepted.Inc()
	m.acceptedValue.add(1)
}

// AddBytesIn counts bytes read from a socket.
func (m *Metrics) AddBytesIn(n int) {
	m.bytesIn.Add(float64(n))
	m.bytesInValue.add(uint64(n))
}

// AddBytesOut counts bytes written to a socket.
func (m *Metrics) AddBytesOut(n int) {
	m.bytesOut.Add(float64(n))
	m.bytesOutValue.add(uint64(n))
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// SetSessions sets the connected sessions gauge.
func (m *Metrics) SetSessions(n int) {
	m.sessions.Set(float64(n))
}

// SetPublishers sets the live paths gauge.
func (m *Metrics) SetPublishers(n int) {
	m.publishers.Set(float64(n))
}

// SetTranscodeTasks sets the running transcode tasks gauge.
func (m *Metrics) SetTranscodeTasks(n int) {
	m.transcodeTasks.Set(float64(n))
}

// Stats is a snapshot of the traffic counters.
type Stats struct {
	Accepted uint64 `json:"accepted"`
	BytesIn  uint64 `json:"inbytes"`
	BytesOut uint64 `json:"outbytes"`
}

// Snapshot returns the current traffic counters.
func (m *Metrics) Snapshot() Stats {
	return Stats{
		Accepted: m.acceptedValue.load(),
		BytesIn:  m.bytesInValue.load(),
		BytesOut: m.bytesOutValue.load(),
	}
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
