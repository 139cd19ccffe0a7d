package recommend

import (
	"context"
	"mySmartMarket/domain"
)

// ---- Data access port ----

type ProductRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	// FindByIDs skips unknown ids.
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

type PurchaseRepository interface {
	// FindPurchaseHistory returns the customer's purchases joined to products,
	// newest first.
	FindPurchaseHistory(ctx context.Context, customerID uint) ([]domain.PurchaseDetail, error)
	FindPurchasedProductIDs(ctx context.Context, customerID uint) ([]uint64, error)
	// FindRatedPurchases returns every purchase with rating > 0.
	FindRatedPurchases(ctx context.Context) ([]domain.PurchaseDetail, error)
	// FindProductStats returns aggregates for products with at least one purchase.
	FindProductStats(ctx context.Context) ([]domain.ProductStats, error)
}

// SessionStore keeps sessions between calls. GetSession returns nil, nil
// for an unknown id.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	SaveSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
}
