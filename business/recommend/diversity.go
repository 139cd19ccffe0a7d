package recommend

import (
	"mySmartMarket/domain"
	"sort"
)

type categoryGroup struct {
	category string
	first    int
	items    []domain.ScoredCandidate
}

// Diversify picks up to n candidates round-robin across categories. Each pass
// takes the best remaining item of every category, visiting categories by
// their best remaining score, so n <= number of categories yields n distinct
// categories. Ties keep input order. Duplicate product ids are dropped.
func Diversify(candidates []domain.ScoredCandidate, n int) []domain.ScoredCandidate {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	byCategory := make(map[string]*categoryGroup)
	var groups []*categoryGroup
	seen := make(map[uint64]struct{}, len(candidates))

	for i, c := range candidates {
		if _, dup := seen[c.ProductID]; dup {
			continue
		}
		seen[c.ProductID] = struct{}{}

		g, ok := byCategory[c.Category]
		if !ok {
			g = &categoryGroup{category: c.Category, first: i}
			byCategory[c.Category] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, c)
	}

	for _, g := range groups {
		sort.SliceStable(g.items, func(i, j int) bool {
			return g.items[i].Score > g.items[j].Score
		})
	}

	out := make([]domain.ScoredCandidate, 0, min(n, len(seen)))
	for len(out) < n && len(groups) > 0 {
		sort.SliceStable(groups, func(i, j int) bool {
			hi, hj := groups[i].items[0].Score, groups[j].items[0].Score
			if hi != hj {
				return hi > hj
			}
			return groups[i].first < groups[j].first
		})

		for _, g := range groups {
			out = append(out, g.items[0])
			g.items = g.items[1:]
			if len(out) >= n {
				break
			}
		}

		remaining := groups[:0]
		for _, g := range groups {
			if len(g.items) > 0 {
				remaining = append(remaining, g)
			}
		}
		groups = remaining
	}

	return out
}
