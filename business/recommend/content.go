package recommend

import (
	"context"
	"fmt"
	"mySmartMarket/domain"
	"strings"
)

const (
	explorationBonus = 0.2
	maxContentNoise  = 0.2
)

// ContentScorer matches catalog attributes against the customer's profile.
type ContentScorer struct {
	data     *dataSource
	profiles *ProfileBuilder
	rng      *lockedRand
}

func (c *ContentScorer) Score(ctx context.Context, sc *Scope, n int) ([]domain.ScoredCandidate, error) {
	profile, err := c.profiles.Build(ctx, sc)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: no rated purchases", ErrDataSparsity)
	}

	history, err := c.data.history(ctx, sc)
	if err != nil {
		return nil, err
	}
	prices := newPriceStats(history)

	bought := make(map[uint64]struct{}, len(history))
	for _, h := range history {
		bought[h.ProductID] = struct{}{}
	}

	catalog, err := c.data.catalog(ctx, sc)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.ScoredCandidate, 0, len(catalog.products))
	for _, p := range catalog.products {
		if _, ok := bought[p.ID]; ok || sc.IsExcluded(p.ID) {
			continue
		}

		var reasons []string

		catAffinity := profile.CategoryPreferences[p.Category]
		if catAffinity > 0 {
			reasons = append(reasons, "matches "+p.Category)
		} else {
			catAffinity = explorationBonus
			reasons = append(reasons, "explore "+p.Category)
		}

		brandAffinity := profile.BrandPreferences[p.Brand]
		if brandAffinity > 0 {
			reasons = append(reasons, "brand "+p.Brand)
		} else {
			brandAffinity = explorationBonus
		}

		score := 0.3*catAffinity + 0.3*brandAffinity + 0.2*prices.affinity(p.Price) +
			c.rng.Float64()*maxContentNoise
		if score <= 0 {
			continue
		}

		candidates = append(candidates, domain.ScoredCandidate{
			ProductID: p.ID,
			Category:  p.Category,
			Score:     score,
			Reason:    "Product " + strings.Join(reasons, " & "),
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: nothing left to suggest", ErrDataSparsity)
	}

	return Diversify(candidates, n), nil
}

// PriceAffinity scores how close price is to what the customer usually pays
// for products they liked.
func (c *ContentScorer) PriceAffinity(ctx context.Context, sc *Scope, price float64) (float64, error) {
	history, err := c.data.history(ctx, sc)
	if err != nil {
		return neutralPriceAffinity, err
	}
	return newPriceStats(history).affinity(price), nil
}
