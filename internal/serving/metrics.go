package serving

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servegate",
			Subsystem: "serving",
			Name:      "requests_total",
			Help:      "Total dispatched model operations",
		},
		[]string{"operation", "status"},
	)

	modelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servegate",
			Subsystem: "serving",
			Name:      "model_loads_total",
			Help:      "Total model load attempts by outcome",
		},
		[]string{"status"},
	)

	telemetryRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servegate",
			Subsystem: "telemetry",
			Name:      "records_total",
			Help:      "Telemetry records by delivery result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, modelLoadsTotal, telemetryRecordsTotal)
}
