package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_active_connections",
		Help: "Active websocket connections",
	})
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_sent_total",
		Help: "Messages persisted and fanned out",
	})
	DroppedPushes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_dropped_pushes_total",
		Help: "Pushes dropped because a client send buffer was full",
	})
)

func Init() {
	prometheus.MustRegister(ActiveConnections, MessagesSent, DroppedPushes)
}

// Handler returns the http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
