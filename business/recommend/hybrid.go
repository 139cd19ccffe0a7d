package recommend

import (
	"context"
	"fmt"
	"mySmartMarket/domain"
	"mySmartMarket/pkg/logger"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	minHybridFetch   = 20
	coldStartBelow   = 5
	heavyBuyerAbove  = 20
	narrowVarietyMax = 3
)

// hybridSources is the fixed merge order of the ensemble.
var hybridSources = []Algorithm{
	AlgorithmPopular,
	AlgorithmContent,
	AlgorithmCollaborative,
	AlgorithmLatentFactor,
}

var (
	coldStartWeights = map[Algorithm]float64{
		AlgorithmPopular: 0.3, AlgorithmContent: 0.4, AlgorithmCollaborative: 0.2, AlgorithmLatentFactor: 0.1,
	}
	narrowWeights = map[Algorithm]float64{
		AlgorithmPopular: 0.2, AlgorithmContent: 0.3, AlgorithmCollaborative: 0.2, AlgorithmLatentFactor: 0.3,
	}
	balancedWeights = map[Algorithm]float64{
		AlgorithmPopular: 0.2, AlgorithmContent: 0.3, AlgorithmCollaborative: 0.25, AlgorithmLatentFactor: 0.25,
	}
)

func ensembleWeights(p *domain.UserProfile) map[Algorithm]float64 {
	switch {
	case p == nil || p.TotalPurchases < coldStartBelow:
		return coldStartWeights
	case p.TotalPurchases > heavyBuyerAbove && p.CategoryVariety < narrowVarietyMax:
		return narrowWeights
	default:
		return balancedWeights
	}
}

type merged struct {
	candidate domain.ScoredCandidate
	reasons   []string
}

// hybrid blends the four sources, normalises to [0,1] and diversifies.
// A failing source contributes nothing; an empty blend is ErrDataSparsity.
// Products already shown in this session only lose ties.
func (e *Engine) hybrid(ctx context.Context, sc *Scope, n int) ([]domain.ScoredCandidate, error) {
	traceID := TraceIDFromContext(ctx)

	profile, err := e.profiles.Build(ctx, sc)
	if err != nil {
		logger.Warn("hybrid_profile_failed", "trace_id", traceID, "customer_id", sc.CustomerID, "error", err)
		profile = nil
	}
	weights := ensembleWeights(profile)
	k := max(2*n, minHybridFetch)

	results := make([][]domain.ScoredCandidate, len(hybridSources))
	fetch := func(ctx context.Context, i int) {
		src := hybridSources[i]
		cands, err := e.runScorer(ctx, sc, src, k)
		if err != nil {
			logger.Debug("hybrid_source_empty", "trace_id", traceID, "source", src, "error", err)
			return
		}
		results[i] = cands
	}

	if e.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range hybridSources {
			g.Go(func() error {
				fetch(gctx, i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range hybridSources {
			fetch(ctx, i)
		}
	}

	byID := make(map[uint64]*merged)
	var order []*merged
	for i, src := range hybridSources {
		w := weights[src]
		for _, c := range results[i] {
			if sc.IsExcluded(c.ProductID) {
				continue
			}
			m, ok := byID[c.ProductID]
			if !ok {
				m = &merged{candidate: domain.ScoredCandidate{ProductID: c.ProductID, Category: c.Category}}
				byID[c.ProductID] = m
				order = append(order, m)
			}
			m.candidate.Score += w * c.Score
			reason := c.Reason
			if reason == "" {
				reason = string(src)
			}
			m.reasons = appendUnique(m.reasons, fmt.Sprintf("%s: %s (x%.2f)", src, reason, w))
		}
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no source produced candidates", ErrDataSparsity)
	}

	var seen map[uint64]struct{}
	if sc.Session != nil {
		seen = sc.Session.RecommendedSet()
	}

	blended := make([]domain.ScoredCandidate, len(order))
	for i, m := range order {
		c := m.candidate
		c.Reason = strings.Join(m.reasons, " | ")
		blended[i] = c
	}

	normalize(blended)
	sort.SliceStable(blended, func(i, j int) bool {
		if blended[i].Score != blended[j].Score {
			return blended[i].Score > blended[j].Score
		}
		_, si := seen[blended[i].ProductID]
		_, sj := seen[blended[j].ProductID]
		return !si && sj
	})

	out := Diversify(blended, n)
	for i := range out {
		out[i].Reason = fmt.Sprintf("%s | diversified across categories | blended score %.2f", out[i].Reason, out[i].Score)
	}
	return out, nil
}

// normalize rescales scores to [0,1] with min-max; equal scores become 0.5.
func normalize(cands []domain.ScoredCandidate) {
	if len(cands) == 0 {
		return
	}
	lo, hi := cands[0].Score, cands[0].Score
	for _, c := range cands[1:] {
		lo = min(lo, c.Score)
		hi = max(hi, c.Score)
	}
	for i := range cands {
		if hi > lo {
			cands[i].Score = (cands[i].Score - lo) / (hi - lo)
		} else {
			cands[i].Score = 0.5
		}
	}
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}
