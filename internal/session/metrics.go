package session

import "github.com/prometheus/client_golang/prometheus"

var (
	framesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelview",
			Subsystem: "session",
			Name:      "frames_total",
			Help:      "Inbound frames by kind",
		},
		[]string{"kind"},
	)
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelview",
			Subsystem: "session",
			Name:      "errors_total",
			Help:      "Reported failures by kind",
		},
		[]string{"kind"},
	)
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelview",
			Subsystem: "session",
			Name:      "requests_total",
			Help:      "Outbound requests by action",
		},
		[]string{"action"},
	)
	placedModels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelview",
			Subsystem: "session",
			Name:      "placed_models",
			Help:      "Models currently placed in the scene",
		},
	)
)

func init() {
	prometheus.MustRegister(framesTotal, errorsTotal, requestsTotal, placedModels)
}
