package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"mySmartMarket/domain"
	"sync"
	"sync/atomic"
	"time"
)

// lazy loads a value once and shares it between the scorers of one call.
type lazy[T any] struct {
	once sync.Once
	done atomic.Bool
	val  T
	err  error
}

func (l *lazy[T]) load(fn func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.val, l.err = fn()
		l.done.Store(true)
	})
	return l.val, l.err
}

func (l *lazy[T]) loaded() bool {
	return l.done.Load()
}

// Scope is the explicit context of one recommendation call: the customer,
// the session it is bound to and the purchased set every scorer excludes.
// Data read from the store is loaded at most once per Scope.
type Scope struct {
	CustomerID uint
	Session    *domain.Session
	Now        time.Time
	Excluded   map[uint64]struct{}

	catalog lazy[*catalogIndex]
	history lazy[[]domain.PurchaseDetail]
	stats   lazy[*statsIndex]
	matrix  lazy[*RatingMatrix]
	profile lazy[*domain.UserProfile]
}

func NewScope(customerID uint, session *domain.Session, now time.Time) *Scope {
	return &Scope{
		CustomerID: customerID,
		Session:    session,
		Now:        now,
		Excluded:   map[uint64]struct{}{},
	}
}

func (s *Scope) IsExcluded(productID uint64) bool {
	_, ok := s.Excluded[productID]
	return ok
}

type catalogIndex struct {
	products []domain.Product
	byID     map[uint64]domain.Product
}

type statsIndex struct {
	list []domain.ProductStats
	byID map[uint64]domain.ProductStats
}

// dataSource is the read side shared by every scorer.
type dataSource struct {
	products  ProductRepository
	purchases PurchaseRepository
	decayDays float64
}

func (d *dataSource) catalog(ctx context.Context, sc *Scope) (*catalogIndex, error) {
	return sc.catalog.load(func() (*catalogIndex, error) {
		products, err := d.products.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}
		idx := &catalogIndex{
			products: products,
			byID:     make(map[uint64]domain.Product, len(products)),
		}
		for _, p := range products {
			idx.byID[p.ID] = p
		}
		return idx, nil
	})
}

// productsByID resolves ids from the call's catalog when a scorer already
// loaded it, and otherwise fetches just those ids.
func (d *dataSource) productsByID(ctx context.Context, sc *Scope, ids []uint64) (map[uint64]domain.Product, error) {
	if sc.catalog.loaded() {
		idx, err := d.catalog(ctx, sc)
		if err == nil {
			return idx.byID, nil
		}
	}

	products, err := d.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products by id: %w", err)
	}
	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (d *dataSource) history(ctx context.Context, sc *Scope) ([]domain.PurchaseDetail, error) {
	return sc.history.load(func() ([]domain.PurchaseDetail, error) {
		rows, err := d.purchases.FindPurchaseHistory(ctx, sc.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("load purchase history: %w", err)
		}
		return rows, nil
	})
}

func (d *dataSource) productStats(ctx context.Context, sc *Scope) (*statsIndex, error) {
	return sc.stats.load(func() (*statsIndex, error) {
		rows, err := d.purchases.FindProductStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("load product stats: %w", err)
		}
		idx := &statsIndex{list: rows, byID: make(map[uint64]domain.ProductStats, len(rows))}
		for _, r := range rows {
			idx.byID[r.ProductID] = r
		}
		return idx, nil
	})
}

func (d *dataSource) ratingMatrix(ctx context.Context, sc *Scope) (*RatingMatrix, error) {
	return sc.matrix.load(func() (*RatingMatrix, error) {
		rows, err := d.purchases.FindRatedPurchases(ctx)
		if err != nil {
			return nil, fmt.Errorf("load rated purchases: %w", err)
		}
		return BuildRatingMatrix(rows, sc.Now, d.decayDays), nil
	})
}

// lockedRand is a math/rand source safe for the concurrent hybrid sources.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Perm(n int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Perm(n)
}
