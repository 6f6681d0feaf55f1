package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var demoLEDRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledmcp",
	Subsystem: "demo",
	Name:      "led_requests_total",
	Help:      "Requests to the HTTP demo LED endpoints",
}, []string{"action", "outcome"})

// RecordDemoLEDRequest counts one demo endpoint call.
func RecordDemoLEDRequest(action, outcome string) {
	demoLEDRequests.WithLabelValues(action, outcome).Inc()
}
