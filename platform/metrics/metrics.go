// Package metrics exposes Prometheus collectors shared by the API and the worker.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papex_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "papex_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	slotReservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papex_slot_reservations_total",
			Help: "Slot reservation attempts by outcome",
		},
		[]string{"result"},
	)

	notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papex_notifications_total",
			Help: "Notification deliveries by channel and outcome",
		},
		[]string{"channel", "result"},
	)

	lifecycleLeads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papex_lifecycle_leads_total",
			Help: "Leads processed by the lifecycle jobs",
		},
		[]string{"job"},
	)

	liveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "papex_live_streams",
			Help: "Staff event streams currently connected",
		},
	)
)

// Outcome labels.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultError    = "error"
	ResultSkipped  = "skipped"
)

// GinMiddleware records request count and latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordSlotReservation(result string) {
	slotReservations.WithLabelValues(result).Inc()
}

func RecordNotification(channel, result string) {
	notifications.WithLabelValues(channel, result).Inc()
}

func RecordLifecycle(job string, count int) {
	if count <= 0 {
		return
	}
	lifecycleLeads.WithLabelValues(job).Add(float64(count))
}

// StreamOpened and StreamClosed track connected event streams.
func StreamOpened() { liveStreams.Inc() }
func StreamClosed() { liveStreams.Dec() }
