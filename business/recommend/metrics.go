package recommend

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Recommend calls by requested algorithm.",
		},
		[]string{"algorithm"},
	)

	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Strategies that failed and handed over to the next one in the chain.",
		},
		[]string{"strategy", "reason"},
	)

	SessionResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_session_resets_total",
			Help: "Session resets caused by a customer change or an explicit reset.",
		},
	)

	ScorerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_scorer_duration_seconds",
			Help:    "Time spent inside each scorer.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scorer"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, FallbacksTotal, SessionResetsTotal, ScorerDuration)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrDataSparsity):
		return "data_sparsity"
	case errors.Is(err, ErrComputation):
		return "computation"
	case errors.Is(err, ErrCatalogEmpty):
		return "catalog_empty"
	default:
		return "store_error"
	}
}
