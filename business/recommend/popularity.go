package recommend

import (
	"context"
	"fmt"
	"mySmartMarket/domain"
	"sort"
)

const (
	perCategoryPopular = 2
	randomScore        = 0.5
	// neutralRating is shown for random picks that carry no rating signal.
	neutralRating = 4.0
)

// PopularityScorer ranks products by purchase volume, rating and reach. It
// ignores the customer's own history apart from the excluded set.
type PopularityScorer struct {
	data *dataSource
	rng  *lockedRand
}

func popularityRank(s domain.ProductStats) float64 {
	return 0.6*float64(s.PurchaseCount) + 0.3*s.AvgRating + 0.1*float64(s.UniqueCustomers)
}

// Popular keeps the best two products of every category and diversifies
// them down to n. It returns ErrDataSparsity when nothing has been bought.
func (p *PopularityScorer) Popular(ctx context.Context, sc *Scope, n int) ([]domain.ScoredCandidate, error) {
	stats, err := p.data.productStats(ctx, sc)
	if err != nil {
		return nil, err
	}
	if len(stats.list) == 0 {
		return nil, fmt.Errorf("%w: no product has been purchased", ErrDataSparsity)
	}

	ranked := make([]domain.ProductStats, 0, len(stats.list))
	for _, s := range stats.list {
		if s.PurchaseCount < 1 || sc.IsExcluded(s.ProductID) {
			continue
		}
		ranked = append(ranked, s)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Category != ranked[j].Category {
			return ranked[i].Category < ranked[j].Category
		}
		ri, rj := popularityRank(ranked[i]), popularityRank(ranked[j])
		if ri != rj {
			return ri > rj
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	perCategory := make(map[string]int)
	candidates := make([]domain.ScoredCandidate, 0, len(ranked))
	for _, s := range ranked {
		if perCategory[s.Category] >= perCategoryPopular {
			continue
		}
		perCategory[s.Category]++
		candidates = append(candidates, domain.ScoredCandidate{
			ProductID: s.ProductID,
			Category:  s.Category,
			Score:     popularityRank(s) / 10,
			Reason:    fmt.Sprintf("Popular product (rating %.1f, %d customers)", s.AvgRating, s.UniqueCustomers),
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: every popular product is excluded", ErrDataSparsity)
	}

	return Diversify(candidates, n), nil
}

// Random samples the catalog uniformly. It is the last strategy of the
// chain and only fails on an empty catalog.
func (p *PopularityScorer) Random(ctx context.Context, sc *Scope, n int) ([]domain.ScoredCandidate, error) {
	catalog, err := p.data.catalog(ctx, sc)
	if err != nil {
		return nil, err
	}
	if len(catalog.products) == 0 {
		return nil, ErrCatalogEmpty
	}

	candidates := make([]domain.ScoredCandidate, 0, len(catalog.products))
	for _, i := range p.rng.Perm(len(catalog.products)) {
		prod := catalog.products[i]
		if sc.IsExcluded(prod.ID) {
			continue
		}
		candidates = append(candidates, domain.ScoredCandidate{
			ProductID: prod.ID,
			Category:  prod.Category,
			Score:     randomScore,
			Reason:    "Suggested product",
		})
	}

	return Diversify(candidates, n), nil
}
