package scene

import "github.com/prometheus/client_golang/prometheus"

var (
	parseSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modelview",
			Subsystem: "scene",
			Name:      "parse_seconds",
			Help:      "Model parse latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"result"},
	)
	staleParses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelview",
			Subsystem: "scene",
			Name:      "stale_parses_total",
			Help:      "Parse results discarded because a newer layout superseded them",
		},
	)
)

func init() {
	prometheus.MustRegister(parseSeconds, staleParses)
}
