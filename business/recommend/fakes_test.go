//go:build !integration

package recommend

import (
	"context"
	"mySmartMarket/domain"
	"sort"
	"sync"
	"time"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeStore implements ProductRepository and PurchaseRepository over slices.
type fakeStore struct {
	mu           sync.Mutex
	products     []domain.Product
	purchases    []domain.PurchaseRecord
	historyCalls map[uint]int
	byIDCalls    int
	err          error
	// purchasedErr fails only FindPurchasedProductIDs.
	purchasedErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{historyCalls: make(map[uint]int)}
}

func (f *fakeStore) addProduct(id uint64, category, brand string, price float64) {
	f.products = append(f.products, domain.Product{ID: id, Name: "product", Category: category, Brand: brand, Price: price})
}

func (f *fakeStore) buy(customer uint, product uint64, rating, daysAgo int) {
	f.purchases = append(f.purchases, domain.PurchaseRecord{
		ID:           uint64(len(f.purchases) + 1),
		CustomerID:   customer,
		ProductID:    product,
		Quantity:     1,
		Rating:       rating,
		PurchaseDate: fixedNow.AddDate(0, 0, -daysAgo),
	})
}

func (f *fakeStore) product(id uint64) (domain.Product, bool) {
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (f *fakeStore) detail(r domain.PurchaseRecord) domain.PurchaseDetail {
	p, _ := f.product(r.ProductID)
	return domain.PurchaseDetail{
		CustomerID:   r.CustomerID,
		ProductID:    r.ProductID,
		Name:         p.Name,
		Category:     p.Category,
		Brand:        p.Brand,
		Price:        p.Price,
		Quantity:     r.Quantity,
		Rating:       r.Rating,
		PurchaseDate: r.PurchaseDate,
	}
}

func (f *fakeStore) FindAll(ctx context.Context) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Product(nil), f.products...), nil
}

func (f *fakeStore) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.byIDCalls++
	f.mu.Unlock()
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.product(id); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) FindPurchaseHistory(ctx context.Context, customerID uint) ([]domain.PurchaseDetail, error) {
	f.mu.Lock()
	f.historyCalls[customerID]++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.PurchaseDetail
	for _, r := range f.purchases {
		if r.CustomerID == customerID {
			out = append(out, f.detail(r))
		}
	}
	return out, nil
}

func (f *fakeStore) FindPurchasedProductIDs(ctx context.Context, customerID uint) ([]uint64, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.purchasedErr != nil {
		return nil, f.purchasedErr
	}
	var out []uint64
	for _, r := range f.purchases {
		if r.CustomerID == customerID {
			out = append(out, r.ProductID)
		}
	}
	return out, nil
}

func (f *fakeStore) FindRatedPurchases(ctx context.Context) ([]domain.PurchaseDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.PurchaseDetail
	for _, r := range f.purchases {
		if r.Rating > 0 {
			out = append(out, f.detail(r))
		}
	}
	return out, nil
}

func (f *fakeStore) FindProductStats(ctx context.Context) ([]domain.ProductStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	type agg struct {
		count     int64
		ratingSum float64
		customers map[uint]struct{}
	}
	aggs := map[uint64]*agg{}
	for _, r := range f.purchases {
		a, ok := aggs[r.ProductID]
		if !ok {
			a = &agg{customers: map[uint]struct{}{}}
			aggs[r.ProductID] = a
		}
		a.count++
		a.ratingSum += float64(r.Rating)
		a.customers[r.CustomerID] = struct{}{}
	}

	var out []domain.ProductStats
	for id, a := range aggs {
		p, ok := f.product(id)
		if !ok {
			continue
		}
		out = append(out, domain.ProductStats{
			ProductID:       id,
			Name:            p.Name,
			Category:        p.Category,
			Brand:           p.Brand,
			Price:           p.Price,
			PurchaseCount:   a.count,
			AvgRating:       a.ratingSum / float64(a.count),
			UniqueCustomers: int64(len(a.customers)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// marketFixture is a small shop with three categories and overlapping buyers.
func marketFixture() *fakeStore {
	f := newFakeStore()

	f.addProduct(1, "Electronics", "Apple", 900)
	f.addProduct(2, "Electronics", "Samsung", 700)
	f.addProduct(3, "Electronics", "Apple", 300)
	f.addProduct(4, "Electronics", "Sony", 400)
	f.addProduct(5, "Fashion", "Zara", 50)
	f.addProduct(6, "Fashion", "Uniqlo", 30)
	f.addProduct(7, "Fashion", "Zara", 80)
	f.addProduct(8, "Grocery", "Vinamilk", 5)
	f.addProduct(9, "Grocery", "Nestle", 8)
	f.addProduct(10, "Grocery", "Vinamilk", 6)

	// customer 1: electronics fan
	f.buy(1, 1, 5, 2)
	f.buy(1, 2, 4, 10)
	f.buy(1, 5, 3, 20)
	// customer 2: similar to 1
	f.buy(2, 1, 5, 1)
	f.buy(2, 2, 5, 3)
	f.buy(2, 3, 4, 5)
	f.buy(2, 8, 4, 5)
	// customer 3: similar to 1 and 2
	f.buy(3, 1, 4, 7)
	f.buy(3, 4, 5, 7)
	f.buy(3, 6, 4, 9)
	// customer 4: grocery and fashion
	f.buy(4, 8, 5, 1)
	f.buy(4, 9, 4, 2)
	f.buy(4, 7, 4, 4)
	f.buy(4, 10, 3, 6)
	// customer 5: mixed
	f.buy(5, 5, 4, 3)
	f.buy(5, 9, 5, 3)
	f.buy(5, 3, 4, 8)

	return f
}

func newTestEngine(f *fakeStore, parallel bool) *Engine {
	cfg := DefaultConfig()
	cfg.Parallel = parallel
	cfg.Seed = 7
	e := NewEngine(f, f, NewMemorySessionStore(0), cfg)
	e.now = func() time.Time { return fixedNow }
	return e
}
