package recommend

import (
	"context"
	"math"
	"mySmartMarket/domain"
	"sort"
)

// ProfileBuilder derives a UserProfile from the purchase history of the
// scope's customer.
type ProfileBuilder struct {
	data *dataSource
}

// Build returns nil, nil for a cold-start customer (no rated purchase). The
// profile is built at most once per Scope and cached on the session only
// while the session is bound to the same customer.
func (b *ProfileBuilder) Build(ctx context.Context, sc *Scope) (*domain.UserProfile, error) {
	return sc.profile.load(func() (*domain.UserProfile, error) {
		history, err := b.data.history(ctx, sc)
		if err != nil {
			return nil, err
		}

		profile := buildProfile(history)
		if profile != nil && sc.Session != nil {
			sc.Session.CacheProfile(sc.CustomerID, profile)
		}
		return profile, nil
	})
}

type groupKey struct {
	category string
	brand    string
}

type groupAgg struct {
	ratingSum float64
	count     int
	priceSum  float64
}

func buildProfile(history []domain.PurchaseDetail) *domain.UserProfile {
	rated := false
	for _, h := range history {
		if h.Rating > 0 {
			rated = true
			break
		}
	}
	if !rated {
		return nil
	}

	aggs := make(map[groupKey]*groupAgg)
	var keys []groupKey
	for _, h := range history {
		k := groupKey{category: h.Category, brand: h.Brand}
		a, ok := aggs[k]
		if !ok {
			a = &groupAgg{}
			aggs[k] = a
			keys = append(keys, k)
		}
		a.ratingSum += float64(h.Rating)
		a.count++
		a.priceSum += h.Price
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].category != keys[j].category {
			return keys[i].category < keys[j].category
		}
		return keys[i].brand < keys[j].brand
	})

	maxPrice := 0.0
	for _, a := range aggs {
		maxPrice = math.Max(maxPrice, a.priceSum/float64(a.count))
	}
	priceDenom := math.Max(maxPrice, 1)

	profile := &domain.UserProfile{
		CategoryPreferences: make(map[string]float64),
		BrandPreferences:    make(map[string]float64),
		PriceRange:          domain.PriceRange{Min: math.Inf(1)},
	}

	catSum := make(map[string]float64)
	catN := make(map[string]int)
	ratingSum := 0.0

	for _, k := range keys {
		a := aggs[k]
		avgRating := a.ratingSum / float64(a.count)
		avgPrice := a.priceSum / float64(a.count)
		pref := 0.5*avgRating + 0.3*float64(a.count) + 0.2*(avgPrice/priceDenom)

		catSum[k.category] += pref
		catN[k.category]++

		// A brand sold in several categories keeps its strongest group.
		if cur, ok := profile.BrandPreferences[k.brand]; !ok || pref > cur {
			profile.BrandPreferences[k.brand] = pref
		}

		profile.TotalPurchases += a.count
		ratingSum += avgRating
		profile.PriceRange.Min = math.Min(profile.PriceRange.Min, avgPrice)
		profile.PriceRange.Max = math.Max(profile.PriceRange.Max, avgPrice)
		profile.PriceRange.Mean += avgPrice
	}

	for cat, sum := range catSum {
		profile.CategoryPreferences[cat] = sum / float64(catN[cat])
	}
	profile.CategoryVariety = len(catSum)
	profile.AverageRating = ratingSum / float64(len(keys))
	profile.PriceRange.Mean /= float64(len(keys))

	return profile
}
