//go:build !integration

package catalog

import (
	"context"
	"errors"
	"math"
	"mySmartMarket/business/recommend"
	"mySmartMarket/domain"
	"testing"
)

type fakeProducts struct {
	stats     []domain.ProductStats
	bought    map[uint]map[uint64]bool
	lastMax   float64
	lastLimit int
	err       error
}

func (f *fakeProducts) FindCategorySummaries(context.Context) ([]domain.CategorySummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := map[string]int64{}
	var order []string
	for _, p := range f.stats {
		if counts[p.Category] == 0 {
			order = append(order, p.Category)
		}
		counts[p.Category]++
	}
	out := make([]domain.CategorySummary, 0, len(order))
	for _, c := range order {
		out = append(out, domain.CategorySummary{Category: c, ProductCount: counts[c]})
	}
	return out, nil
}

func (f *fakeProducts) FindByCategory(_ context.Context, category string, minPrice, maxPrice float64, limit int) ([]domain.ProductStats, error) {
	f.lastMax, f.lastLimit = maxPrice, limit
	var out []domain.ProductStats
	for _, p := range f.stats {
		if p.Category == category && p.Price >= minPrice && p.Price <= maxPrice {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeProducts) FindRandomInCategories(_ context.Context, customerID uint, categories []string, limit int) ([]domain.ProductStats, error) {
	want := map[string]bool{}
	for _, c := range categories {
		want[c] = true
	}
	var out []domain.ProductStats
	for _, p := range f.stats {
		if want[p.Category] && !f.bought[customerID][p.ProductID] && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, f.err
}

type fakeBinder struct {
	customer map[string]uint
	served   map[string][]uint64
}

func (f *fakeBinder) BindSession(_ context.Context, sessionID string, customerID uint, served []uint64) (bool, error) {
	reset := f.customer[sessionID] != customerID
	if reset {
		f.served[sessionID] = nil
	}
	f.customer[sessionID] = customerID
	f.served[sessionID] = append(f.served[sessionID], served...)
	return reset, nil
}

func newTestService() (*catalogService, *fakeProducts, *fakeBinder) {
	products := &fakeProducts{
		stats: []domain.ProductStats{
			{ProductID: 1, Name: "Phone", Category: "Electronics", Price: 300, AvgRating: 4.5},
			{ProductID: 2, Name: "Cable", Category: "Electronics", Price: 10},
			{ProductID: 3, Name: "Shirt", Category: "Fashion", Price: 25},
			{ProductID: 4, Name: "Rice", Category: "Grocery", Price: 5},
		},
		bought: map[uint]map[uint64]bool{1: {1: true}},
	}
	binder := &fakeBinder{customer: map[string]uint{}, served: map[string][]uint64{}}
	return NewCatalogService(products, binder), products, binder
}

func TestGetCategories(t *testing.T) {
	svc, products, _ := newTestService()

	got, err := svc.GetCategories(context.Background())
	if err != nil {
		t.Fatalf("GetCategories: %v", err)
	}
	if len(got) != 3 || got[0].Category != "Electronics" || got[0].ProductCount != 2 {
		t.Fatalf("categories = %+v", got)
	}

	products.err = errors.New("db down")
	if _, err := svc.GetCategories(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetProductsByCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		min, max float64
		wantErr  error
		wantLen  int
	}{
		{name: "unbounded", category: "Electronics", wantLen: 2},
		{name: "price band", category: "Electronics", min: 0, max: 50, wantLen: 1},
		{name: "unknown category", category: "Toys", wantLen: 0},
		{name: "blank", category: " ", wantErr: ErrInvalidCategory},
		{name: "inverted band", category: "Electronics", min: 60, max: 50, wantErr: ErrInvalidPriceRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, products, _ := newTestService()
			got, err := svc.GetProductsByCategory(context.Background(), tt.category, tt.min, tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got == nil || len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if products.lastLimit != categoryProductLimit {
				t.Fatalf("limit = %d", products.lastLimit)
			}
			if tt.max == 0 && products.lastMax != math.MaxFloat64 {
				t.Fatalf("max = %v, want unbounded", products.lastMax)
			}
		})
	}
}

func TestManualRecommend(t *testing.T) {
	svc, _, binder := newTestService()
	ctx := context.Background()

	res, err := svc.ManualRecommend(ctx, ManualRequest{CustomerID: 1, Categories: []string{"Electronics", " Fashion "}, N: 5})
	if err != nil {
		t.Fatalf("ManualRecommend: %v", err)
	}
	if res.SessionID != recommend.DefaultSessionID || !res.SessionReset {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Items) != 2 {
		t.Fatalf("items = %+v", res.Items)
	}
	for _, it := range res.Items {
		if it.ProductID == 1 {
			t.Fatal("purchased product returned")
		}
		if it.Score != manualScore {
			t.Fatalf("score = %v", it.Score)
		}
		if it.Reason != "Selected category: "+it.Category {
			t.Fatalf("reason = %q", it.Reason)
		}
	}
	if len(binder.served[recommend.DefaultSessionID]) != 2 {
		t.Fatalf("served = %v", binder.served)
	}

	res, err = svc.ManualRecommend(ctx, ManualRequest{CustomerID: 1, Categories: []string{"Grocery"}, N: 5})
	if err != nil || res.SessionReset {
		t.Fatalf("same customer = %+v, %v", res, err)
	}
	res, err = svc.ManualRecommend(ctx, ManualRequest{CustomerID: 2, Categories: []string{"Grocery"}, N: 5})
	if err != nil || !res.SessionReset {
		t.Fatalf("new customer = %+v, %v", res, err)
	}
	if got := binder.served[recommend.DefaultSessionID]; len(got) != 1 || got[0] != 4 {
		t.Fatalf("served after reset = %v", got)
	}
}

func TestManualRecommendInvalid(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name string
		req  ManualRequest
		want error
	}{
		{"no customer", ManualRequest{Categories: []string{"Fashion"}, N: 3}, recommend.ErrInvalidCustomer},
		{"no categories", ManualRequest{CustomerID: 1, N: 3}, ErrNoCategories},
		{"blank categories", ManualRequest{CustomerID: 1, Categories: []string{" "}, N: 3}, ErrNoCategories},
		{"zero n", ManualRequest{CustomerID: 1, Categories: []string{"Fashion"}}, recommend.ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ManualRecommend(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
