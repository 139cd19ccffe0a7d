package recommend

import (
	"context"
	"fmt"
	"mySmartMarket/domain"
	"sort"
)

type neighbor struct {
	row        int
	similarity float64
}

// CollaborativeScorer suggests what similar customers rated.
type CollaborativeScorer struct {
	data          *dataSource
	minSimilarity float64
	maxNeighbors  int
}

func (c *CollaborativeScorer) Score(ctx context.Context, sc *Scope, n int) ([]domain.ScoredCandidate, error) {
	m, err := c.data.ratingMatrix(ctx, sc)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: no rated purchases", ErrDataSparsity)
	}
	target, ok := m.Row(sc.CustomerID)
	if !ok {
		return nil, fmt.Errorf("%w: customer %d has no rated purchases", ErrDataSparsity, sc.CustomerID)
	}

	neighbors := c.neighbors(m, target)
	if len(neighbors) == 0 {
		return nil, fmt.Errorf("%w: no neighbour above similarity %.2f", ErrDataSparsity, c.minSimilarity)
	}

	catalog, err := c.data.catalog(ctx, sc)
	if err != nil {
		return nil, err
	}

	_, cols := m.Dims()
	scores := make([]float64, cols)
	for _, nb := range neighbors {
		for j := 0; j < cols; j++ {
			r := m.values.At(nb.row, j)
			if r <= 0 || m.values.At(target, j) > 0 {
				continue
			}
			scores[j] += r * nb.similarity
		}
	}

	candidates := make([]domain.ScoredCandidate, 0, cols)
	for j, s := range scores {
		if s <= 0 {
			continue
		}
		pid := m.products[j]
		prod, ok := catalog.byID[pid]
		if !ok || sc.IsExcluded(pid) {
			continue
		}
		candidates = append(candidates, domain.ScoredCandidate{
			ProductID: pid,
			Category:  prod.Category,
			Score:     s,
			Reason:    "Customers like you bought this",
		})
	}

	return Diversify(candidates, n), nil
}

// neighbors returns up to maxNeighbors rows most similar to target whose
// similarity exceeds minSimilarity, best first.
func (c *CollaborativeScorer) neighbors(m *RatingMatrix, target int) []neighbor {
	rows, _ := m.Dims()
	all := make([]neighbor, 0, rows)
	for i := 0; i < rows; i++ {
		if i == target {
			continue
		}
		all = append(all, neighbor{row: i, similarity: m.cosine(target, i)})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].similarity > all[j].similarity
	})
	if len(all) > c.maxNeighbors {
		all = all[:c.maxNeighbors]
	}

	out := all[:0]
	for _, nb := range all {
		if nb.similarity > c.minSimilarity {
			out = append(out, nb)
		}
	}
	return out
}
