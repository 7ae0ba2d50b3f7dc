package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "campus_ws_active_connections",
		Help: "Active websocket connections",
	})
	NotificationsDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campus_notifications_delivered_total",
		Help: "Notifications handed to a live connection",
	})
	NotificationsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_notifications_dropped_total",
		Help: "Notifications dropped, by reason",
	}, []string{"reason"})
	GraphInconsistencies = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campus_graph_inconsistencies_total",
		Help: "Follow edges left one-sided after a failed compensating write",
	})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	HTTPLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campus_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			Connections,
			NotificationsDelivered,
			NotificationsDropped,
			GraphInconsistencies,
			HTTPRequests,
			HTTPLatency,
		)
	})
}

// Handler returns a Fiber handler for Prometheus scraping
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
