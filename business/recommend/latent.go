package recommend

import (
	"context"
	"fmt"
	"mySmartMarket/domain"

	"gonum.org/v1/gonum/mat"
)

// LatentFactorScorer predicts unseen ratings from a truncated SVD of the
// mean-centred rating matrix.
type LatentFactorScorer struct {
	data     *dataSource
	minScore float64
	maxRank  int
}

func (l *LatentFactorScorer) rank(rows, cols int) int {
	return min(l.maxRank, max(min(rows, cols)-1, 2))
}

func (l *LatentFactorScorer) Score(ctx context.Context, sc *Scope, n int) (out []domain.ScoredCandidate, err error) {
	m, err := l.data.ratingMatrix(ctx, sc)
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

	rows, cols := m.Dims()
	k := l.rank(rows, cols)
	if k < 2 {
		return nil, fmt.Errorf("%w: rank %d", ErrDataSparsity, k)
	}
	if k >= min(rows, cols) {
		return nil, fmt.Errorf("%w: rank %d needs a matrix larger than %dx%d", ErrComputation, k, rows, cols)
	}

	// gonum reports shape errors by panicking.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrComputation, r)
		}
	}()

	predicted, err := predictRow(m.values, target, k)
	if err != nil {
		return nil, err
	}

	catalog, err := l.data.catalog(ctx, sc)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.ScoredCandidate, 0, cols)
	for j, score := range predicted {
		pid := m.products[j]
		if m.values.At(target, j) > 0 || sc.IsExcluded(pid) || score <= l.minScore {
			continue
		}
		prod, ok := catalog.byID[pid]
		if !ok {
			continue
		}
		candidates = append(candidates, domain.ScoredCandidate{
			ProductID: pid,
			Category:  prod.Category,
			Score:     score,
			Reason:    "Predicted from buying patterns",
		})
	}

	return Diversify(candidates, n), nil
}

// predictRow reconstructs row target of the rank-k approximation of the
// row-centred matrix and adds the row mean back.
func predictRow(values *mat.Dense, target, k int) ([]float64, error) {
	rows, cols := values.Dims()

	means := make([]float64, rows)
	centered := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			sum += values.At(i, j)
		}
		means[i] = sum / float64(cols)
		for j := 0; j < cols; j++ {
			centered.Set(i, j, values.At(i, j)-means[i])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: svd did not converge", ErrComputation)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil)
	if len(sigma) < k {
		return nil, fmt.Errorf("%w: %d singular values for rank %d", ErrComputation, len(sigma), k)
	}

	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum := 0.0
		for t := 0; t < k; t++ {
			sum += u.At(target, t) * sigma[t] * v.At(j, t)
		}
		out[j] = sum + means[target]
	}
	return out, nil
}
