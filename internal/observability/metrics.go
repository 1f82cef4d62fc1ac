package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pimd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total inspection API requests.",
		},
		[]string{"server", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pimd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Inspection API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"server", "method", "path", "status"},
	)
	activeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pimd",
			Subsystem: "session",
			Name:      "connections",
			Help:      "Currently open protocol connections.",
		},
	)
	commandsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pimd",
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "Commands received from clients by type.",
		},
		[]string{"type", "valid"},
	)
	writeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pimd",
			Subsystem: "session",
			Name:      "write_failures_total",
			Help:      "Frames that could not be queued or written.",
		},
		[]string{"reason"},
	)
	notificationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pimd",
			Subsystem: "notify",
			Name:      "decisions_total",
			Help:      "Per-subscriber filter decisions by notification kind.",
		},
		[]string{"kind", "accepted"},
	)
	notificationFanout = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pimd",
			Subsystem: "notify",
			Name:      "fanout_subscribers",
			Help:      "Subscribers that accepted one broadcast notification.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			activeConnections, commandsReceived, writeFailures,
			notificationDecisions, notificationFanout,
		)
	})
}

func RecordHTTPRequest(server, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(server, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(server, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordConnection moves the open-connection gauge by delta.
func RecordConnection(delta int) {
	RegisterMetrics()
	activeConnections.Add(float64(delta))
}

func RecordCommand(kind string, valid bool) {
	RegisterMetrics()
	commandsReceived.WithLabelValues(kind, strconv.FormatBool(valid)).Inc()
}

func RecordWriteFailure(reason string) {
	RegisterMetrics()
	writeFailures.WithLabelValues(reason).Inc()
}

func RecordNotificationDecision(kind string, accepted bool) {
	RegisterMetrics()
	notificationDecisions.WithLabelValues(kind, strconv.FormatBool(accepted)).Inc()
}

func RecordNotificationFanout(kind string, listeners int) {
	RegisterMetrics()
	notificationFanout.WithLabelValues(kind).Observe(float64(listeners))
}
