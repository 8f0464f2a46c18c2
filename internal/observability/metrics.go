package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total number of HTTP requests processed by the chat service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_events_total",
			Help: "Total number of websocket events by name and direction.",
		},
		[]string{"event", "direction"},
	)
	broadcastFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_broadcast_failures_total",
			Help: "Total number of failed websocket writes during fan-out.",
		},
	)
	notifyPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_notifications_published_total",
			Help: "Total number of notification enqueues.",
		},
	)
	notifyErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_notification_errors_total",
			Help: "Total number of failed notification enqueues.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		broadcastFailuresTotal,
		notifyPublishedTotal,
		notifyErrorsTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() { wsActiveConnections.Inc() }
func DecWSActive() { wsActiveConnections.Dec() }

func IncWSEventIn(event string)  { wsEventsTotal.WithLabelValues(event, "in").Inc() }
func IncWSEventOut(event string) { wsEventsTotal.WithLabelValues(event, "out").Inc() }

func IncBroadcastFailure() { broadcastFailuresTotal.Inc() }

func IncNotifyPublished() { notifyPublishedTotal.Inc() }
func IncNotifyError()     { notifyErrorsTotal.Inc() }
