package postgres

import (
	"context"
	"fmt"
	"mySmartMarket/domain"

	"gorm.io/gorm"
)

type RecommendationEventRepository struct {
	DB *gorm.DB
}

func NewRecommendationEventRepository(db *gorm.DB) *RecommendationEventRepository {
	return &RecommendationEventRepository{DB: db}
}

func (r *RecommendationEventRepository) SaveEvent(ctx context.Context, event *domain.RecommendationEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save recommendation event: %w", err)
	}

	return nil
}

func (r *RecommendationEventRepository) FindRecentByCustomer(ctx context.Context, customerID uint, limit int) ([]domain.RecommendationEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.RecommendationEvent
	err := r.DB.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recommendation events: %w", err)
	}

	return events, nil
}
