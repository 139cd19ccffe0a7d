package customer

import (
	"context"
	"errors"
	"fmt"
	"mySmartMarket/business/recommend"
	"mySmartMarket/domain"
	"mySmartMarket/pkg/logger"
	"strings"
)

var (
	ErrInvalidPhone    = errors.New("phone is required")
	ErrInvalidCustomer = errors.New("invalid customer id")
)

// CustomerRepository contract interface
type CustomerRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (domain.Customer, error)
}

type PurchaseRepository interface {
	FindPurchaseHistory(ctx context.Context, customerID uint) ([]domain.PurchaseDetail, error)
	CustomerStats(ctx context.Context, customerID uint) (domain.CustomerStats, error)
}

// SessionEngine is the part of the recommendation engine customer flows touch.
type SessionEngine interface {
	ResetForCustomer(ctx context.Context, sessionID string, customerID uint) error
	BuildProfile(ctx context.Context, customerID uint) (*domain.UserProfile, error)
}

// SearchResult is what the storefront shows after a phone lookup.
type SearchResult struct {
	Customer  domain.Customer         `json:"customer"`
	Purchases []domain.PurchaseDetail `json:"purchase_history"`
	Stats     domain.CustomerStats    `json:"stats"`
}

type customerService struct {
	customerRepo CustomerRepository
	purchaseRepo PurchaseRepository
	engine       SessionEngine
}

func NewCustomerService(customerRepo CustomerRepository, purchaseRepo PurchaseRepository, engine SessionEngine) *customerService {
	return &customerService{
		customerRepo: customerRepo,
		purchaseRepo: purchaseRepo,
		engine:       engine,
	}
}

// SearchByPhone looks the customer up and starts a fresh session for them.
func (s *customerService) SearchByPhone(ctx context.Context, sessionID, phone string) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrInvalidPhone
	}
	traceID := recommend.TraceIDFromContext(ctx)

	customer, err := s.customerRepo.FindByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, domain.ErrCustomerNotFound) {
			logger.Error("customer_search_failed", "trace_id", traceID, "error", err)
		}
		return nil, err
	}

	if err := s.engine.ResetForCustomer(ctx, sessionID, customer.ID); err != nil {
		logger.Warn("session_reset_failed", "trace_id", traceID, "customer_id", customer.ID, "error", err)
	}

	purchases, err := s.purchaseRepo.FindPurchaseHistory(ctx, customer.ID)
	if err != nil {
		logger.Error("purchase_history_failed", "trace_id", traceID, "customer_id", customer.ID, "error", err)
		return nil, fmt.Errorf("load purchase history: %w", err)
	}

	stats, err := s.purchaseRepo.CustomerStats(ctx, customer.ID)
	if err != nil {
		logger.Error("customer_stats_failed", "trace_id", traceID, "customer_id", customer.ID, "error", err)
		return nil, fmt.Errorf("load customer stats: %w", err)
	}

	logger.Info("customer_found", "trace_id", traceID, "customer_id", customer.ID, "purchases", len(purchases))

	return &SearchResult{
		Customer:  customer,
		Purchases: purchases,
		Stats:     stats,
	}, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uint) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, fmt.Errorf("context error: %w", err)
	}
	if id == 0 {
		return domain.Customer{}, ErrInvalidCustomer
	}

	return s.customerRepo.FindByID(ctx, id)
}

func (s *customerService) GetPurchaseHistory(ctx context.Context, id uint) ([]domain.PurchaseDetail, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}

	purchases, err := s.purchaseRepo.FindPurchaseHistory(ctx, id)
	if err != nil {
		logger.Error("purchase_history_failed", "trace_id", recommend.TraceIDFromContext(ctx), "customer_id", id, "error", err)
		return nil, fmt.Errorf("load purchase history: %w", err)
	}
	if purchases == nil {
		purchases = []domain.PurchaseDetail{}
	}

	return purchases, nil
}

func (s *customerService) GetStats(ctx context.Context, id uint) (domain.CustomerStats, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return domain.CustomerStats{}, err
	}

	stats, err := s.purchaseRepo.CustomerStats(ctx, id)
	if err != nil {
		logger.Error("customer_stats_failed", "trace_id", recommend.TraceIDFromContext(ctx), "customer_id", id, "error", err)
		return domain.CustomerStats{}, fmt.Errorf("load customer stats: %w", err)
	}

	return stats, nil
}

// GetProfile returns nil for a customer without rated purchases.
func (s *customerService) GetProfile(ctx context.Context, id uint) (*domain.UserProfile, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}

	return s.engine.BuildProfile(ctx, id)
}
