package domain

import (
	"time"

	"gorm.io/datatypes"
)

// UserProfile summarises a customer's purchase history.
type UserProfile struct {
	CategoryPreferences map[string]float64 `json:"category_preferences"`
	BrandPreferences    map[string]float64 `json:"brand_preferences"`
	PriceRange          PriceRange         `json:"price_range"`
	TotalPurchases      int                `json:"total_purchases"`
	AverageRating       float64            `json:"average_rating"`
	CategoryVariety     int                `json:"category_variety"`
}

type PriceRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// ScoredCandidate is an intermediate scorer output. Score scale depends on
// the producing scorer.
type ScoredCandidate struct {
	ProductID uint64  `json:"product_id"`
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}

// Recommendation is the enriched item returned to callers.
type Recommendation struct {
	ProductID uint64  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Brand     string  `json:"brand"`
	Price     float64 `json:"price"`
	Score     float64 `json:"score"`
	AvgRating float64 `json:"avg_rating"`
	Reason    string  `json:"reason"`
}

// RecommendationEvent logs one served recommendation list.
type RecommendationEvent struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	SessionID  string            `gorm:"column:session_id;type:text;index" json:"session_id"`
	CustomerID uint              `gorm:"column:customer_id;index" json:"customer_id"`
	Algorithm  string            `gorm:"column:algorithm;type:text" json:"algorithm"`
	Strategy   string            `gorm:"column:strategy;type:text" json:"strategy"`
	ItemCount  int               `gorm:"column:item_count" json:"item_count"`
	Context    datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RecommendationEvent) TableName() string {
	return "recommendation_events"
}
