package activity

import (
	"context"
	"errors"
	"fmt"
	"mySmartMarket/business/recommend"
	"mySmartMarket/domain"
	"mySmartMarket/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/datatypes"
)

const maxRecentEvents = 100

var ErrInvalidCustomer = errors.New("invalid customer id")

var ServedEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recommend_served_events_total",
		Help: "Recommendation lists written to the served log, by strategy.",
	},
	[]string{"strategy"},
)

func init() {
	prometheus.MustRegister(ServedEventsTotal)
}

type EventRepository interface {
	SaveEvent(ctx context.Context, event *domain.RecommendationEvent) error
	FindRecentByCustomer(ctx context.Context, customerID uint, limit int) ([]domain.RecommendationEvent, error)
}

type activityService struct {
	eventRepo EventRepository
}

func NewActivityService(eventRepo EventRepository) *activityService {
	return &activityService{eventRepo: eventRepo}
}

// RecordServed appends a served list to the log. Failures are logged and
// swallowed so they never fail the request that produced the list.
func (s *activityService) RecordServed(ctx context.Context, customerID uint, res *recommend.Result) {
	if res == nil {
		return
	}
	traceID := recommend.TraceIDFromContext(ctx)

	ids := make([]interface{}, len(res.Items))
	for i, it := range res.Items {
		ids[i] = it.ProductID
	}

	event := &domain.RecommendationEvent{
		SessionID:  res.SessionID,
		CustomerID: customerID,
		Algorithm:  res.Algorithm.String(),
		Strategy:   res.Strategy.String(),
		ItemCount:  len(res.Items),
		Context: datatypes.JSONMap{
			"trace_id":      traceID,
			"product_ids":   ids,
			"session_reset": res.SessionReset,
			"fallback":      res.Strategy != res.Algorithm,
		},
	}

	if err := s.eventRepo.SaveEvent(ctx, event); err != nil {
		logger.Warn("record_served_failed", "trace_id", traceID, "customer_id", customerID, "error", err)
		return
	}

	ServedEventsTotal.WithLabelValues(res.Strategy.String()).Inc()
}

func (s *activityService) RecentForCustomer(ctx context.Context, customerID uint, limit int) ([]domain.RecommendationEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if customerID == 0 {
		return nil, ErrInvalidCustomer
	}
	if limit <= 0 || limit > maxRecentEvents {
		limit = maxRecentEvents
	}

	events, err := s.eventRepo.FindRecentByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recommendation events: %w", err)
	}
	if events == nil {
		events = []domain.RecommendationEvent{}
	}
	return events, nil
}
