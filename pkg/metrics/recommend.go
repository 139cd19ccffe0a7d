package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the smart recommendation handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommend_handler_latency_seconds",
		Help:    "Latency of the smart recommendation handler",
		Buckets: prometheus.DefBuckets,
	})

	// Requests by outcome: ok, fallback, invalid, error
	RecommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_handler_requests_total",
		Help: "Smart recommendation requests by outcome",
	}, []string{"outcome"})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendRequests,
	)
}
