package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mySmartMarket/business/recommend"
	"mySmartMarket/domain"
	"mySmartMarket/pkg/logger"
	"strings"
)

const (
	// categoryProductLimit caps the products-by-category listing.
	categoryProductLimit = 20
	manualScore          = 0.7
)

var (
	ErrInvalidCategory   = errors.New("category is required")
	ErrNoCategories      = errors.New("select at least one category")
	ErrInvalidPriceRange = errors.New("min_price must not exceed max_price")
)

// ProductRepository contract interface
type ProductRepository interface {
	FindCategorySummaries(ctx context.Context) ([]domain.CategorySummary, error)
	FindByCategory(ctx context.Context, category string, minPrice, maxPrice float64, limit int) ([]domain.ProductStats, error)
	FindRandomInCategories(ctx context.Context, customerID uint, categories []string, limit int) ([]domain.ProductStats, error)
}

type SessionBinder interface {
	BindSession(ctx context.Context, sessionID string, customerID uint, served []uint64) (bool, error)
}

// ManualRequest asks for products from categories the customer picked.
type ManualRequest struct {
	SessionID  string
	CustomerID uint
	Categories []string
	N          int
}

type ManualResult struct {
	Items        []domain.Recommendation `json:"items"`
	SessionID    string                  `json:"session_id"`
	SessionReset bool                    `json:"session_reset"`
}

type catalogService struct {
	productRepo ProductRepository
	sessions    SessionBinder
}

func NewCatalogService(productRepo ProductRepository, sessions SessionBinder) *catalogService {
	return &catalogService{
		productRepo: productRepo,
		sessions:    sessions,
	}
}

func (s *catalogService) GetCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.productRepo.FindCategorySummaries(ctx)
	if err != nil {
		logger.Error("find_categories_failed", "trace_id", recommend.TraceIDFromContext(ctx), "error", err)
		return nil, err
	}

	return categories, nil
}

// GetProductsByCategory lists the best sellers of a category. A zero
// maxPrice means no upper bound.
func (s *catalogService) GetProductsByCategory(ctx context.Context, category string, minPrice, maxPrice float64) ([]domain.ProductStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrInvalidCategory
	}
	if maxPrice <= 0 {
		maxPrice = math.MaxFloat64
	}
	if minPrice < 0 || minPrice > maxPrice {
		return nil, ErrInvalidPriceRange
	}

	products, err := s.productRepo.FindByCategory(ctx, category, minPrice, maxPrice, categoryProductLimit)
	if err != nil {
		logger.Error("find_category_products_failed", "trace_id", recommend.TraceIDFromContext(ctx), "category", category, "error", err)
		return nil, err
	}
	if products == nil {
		products = []domain.ProductStats{}
	}

	return products, nil
}

// ManualRecommend samples unbought products from the chosen categories and
// records them in the session, resetting it when the customer changed.
func (s *catalogService) ManualRecommend(ctx context.Context, req ManualRequest) (*ManualResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if req.CustomerID == 0 {
		return nil, recommend.ErrInvalidCustomer
	}
	if req.N < 1 {
		return nil, recommend.ErrInvalidLimit
	}

	categories := make([]string, 0, len(req.Categories))
	for _, c := range req.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = recommend.DefaultSessionID
	}
	traceID := recommend.TraceIDFromContext(ctx)

	rows, err := s.productRepo.FindRandomInCategories(ctx, req.CustomerID, categories, req.N)
	if err != nil {
		logger.Error("manual_sample_failed", "trace_id", traceID, "customer_id", req.CustomerID, "error", err)
		return nil, err
	}

	items := make([]domain.Recommendation, 0, len(rows))
	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		items = append(items, domain.Recommendation{
			ProductID: r.ProductID,
			Name:      r.Name,
			Category:  r.Category,
			Brand:     r.Brand,
			Price:     r.Price,
			Score:     manualScore,
			AvgRating: r.AvgRating,
			Reason:    "Selected category: " + r.Category,
		})
		ids = append(ids, r.ProductID)
	}

	reset, err := s.sessions.BindSession(ctx, sessionID, req.CustomerID, ids)
	if err != nil {
		logger.Warn("manual_session_failed", "trace_id", traceID, "session_id", sessionID, "error", err)
	}

	logger.Info("manual_recommend_served",
		"trace_id", traceID,
		"customer_id", req.CustomerID,
		"categories", categories,
		"count", len(items),
	)

	return &ManualResult{
		Items:        items,
		SessionID:    sessionID,
		SessionReset: reset,
	}, nil
}
