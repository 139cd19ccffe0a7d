package recommend

import (
	"context"
	"fmt"
	"math"
	"mySmartMarket/domain"
	"mySmartMarket/pkg/logger"
	"time"
)

const DefaultSessionID = "default"

// exclusionSource labels fallbacks of the purchased-products lookup.
const exclusionSource = "exclusions"

type strategyFunc func(ctx context.Context, sc *Scope, n int) ([]domain.ScoredCandidate, error)

// Request is one recommendation call from the gateway.
type Request struct {
	SessionID  string
	CustomerID uint
	N          int
	// Algorithm switches the session's active strategy when set.
	Algorithm string
}

// Result is the ranked list plus what produced it.
type Result struct {
	Items        []domain.Recommendation `json:"items"`
	Algorithm    Algorithm               `json:"algorithm"`
	Strategy     Algorithm               `json:"strategy"`
	SessionID    string                  `json:"session_id"`
	SessionReset bool                    `json:"session_reset"`
}

// Engine serves recommendations. It holds no per-customer state itself:
// everything a call needs lives in a Scope and in the session loaded from
// the SessionStore under a per-session lock.
type Engine struct {
	cfg      Config
	data     *dataSource
	sessions SessionStore
	locks    *keyedMutex
	now      func() time.Time

	profiles      *ProfileBuilder
	popular       *PopularityScorer
	content       *ContentScorer
	collaborative *CollaborativeScorer
	latent        *LatentFactorScorer

	strategies map[Algorithm]strategyFunc
}

func NewEngine(
	products ProductRepository,
	purchases PurchaseRepository,
	sessions SessionStore,
	cfg Config,
) *Engine {
	cfg = cfg.withDefaults()
	data := &dataSource{products: products, purchases: purchases, decayDays: cfg.DecayDays}
	rng := newLockedRand(cfg.Seed)
	profiles := &ProfileBuilder{data: data}

	e := &Engine{
		cfg:      cfg,
		data:     data,
		sessions: sessions,
		locks:    newKeyedMutex(),
		now:      time.Now,

		profiles:      profiles,
		popular:       &PopularityScorer{data: data, rng: rng},
		content:       &ContentScorer{data: data, profiles: profiles, rng: rng},
		collaborative: &CollaborativeScorer{data: data, minSimilarity: cfg.NeighborMinSimilarity, maxNeighbors: cfg.NeighborCount},
		latent:        &LatentFactorScorer{data: data, minScore: cfg.LatentMinScore, maxRank: cfg.MaxRank},
	}

	e.strategies = map[Algorithm]strategyFunc{
		AlgorithmHybrid:        e.hybrid,
		AlgorithmPopular:       e.popular.Popular,
		AlgorithmContent:       e.content.Score,
		AlgorithmCollaborative: e.collaborative.Score,
		AlgorithmLatentFactor:  e.latent.Score,
		strategyRandom:         e.popular.Random,
	}

	return e
}

func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if req.CustomerID == 0 {
		return nil, ErrInvalidCustomer
	}
	if req.N < 1 {
		return nil, ErrInvalidLimit
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	traceID := TraceIDFromContext(ctx)

	unlock := e.locks.Lock(sessionID)
	defer unlock()

	session := e.loadSession(ctx, sessionID)

	// The bound customer changes before anything is scored.
	reset := session.Bind(req.CustomerID)
	if reset {
		SessionResetsTotal.Inc()
		logger.Info("session_bound", "trace_id", traceID, "session_id", sessionID, "customer_id", req.CustomerID)
	}

	if req.Algorithm != "" {
		algo, ok := ParseAlgorithm(req.Algorithm)
		if !ok {
			logger.Warn("unknown_algorithm", "trace_id", traceID, "algorithm", req.Algorithm, "using", algo)
		}
		session.Algorithm = algo.String()
	}
	active, _ := ParseAlgorithm(session.Algorithm)
	session.Algorithm = active.String()
	RequestsTotal.WithLabelValues(active.String()).Inc()

	sc := NewScope(req.CustomerID, session, e.now())
	e.excludePurchased(ctx, sc)

	candidates, strategy := e.runChain(ctx, sc, active, req.N)
	items := e.enrich(ctx, sc, candidates, strategy)

	ids := make([]uint64, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	session.MarkRecommended(ids...)
	capRecommended(session)
	session.UpdatedAt = sc.Now
	if err := e.sessions.SaveSession(ctx, session); err != nil {
		logger.Error("save_session_failed", "trace_id", traceID, "session_id", sessionID, "error", err)
	}

	logger.Debug("recommend_served",
		"trace_id", traceID,
		"session_id", sessionID,
		"customer_id", req.CustomerID,
		"algorithm", active,
		"strategy", strategy,
		"count", len(items),
	)

	return &Result{
		Items:        items,
		Algorithm:    active,
		Strategy:     strategy,
		SessionID:    sessionID,
		SessionReset: reset,
	}, nil
}

// ResetForCustomer binds the session to customerID and clears its state even
// if the customer did not change.
func (e *Engine) ResetForCustomer(ctx context.Context, sessionID string, customerID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if customerID == 0 {
		return ErrInvalidCustomer
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	unlock := e.locks.Lock(sessionID)
	defer unlock()

	session := e.loadSession(ctx, sessionID)
	session.Reset(customerID)
	session.UpdatedAt = e.now()
	SessionResetsTotal.Inc()

	if err := e.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	logger.Info("session_reset", "trace_id", TraceIDFromContext(ctx), "session_id", sessionID, "customer_id", customerID)
	return nil
}

// BindSession binds the session to customerID, resetting it when the
// customer changed, and records served as recommended. It is the session
// bookkeeping for lists produced outside Recommend.
func (e *Engine) BindSession(ctx context.Context, sessionID string, customerID uint, served []uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}
	if customerID == 0 {
		return false, ErrInvalidCustomer
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	unlock := e.locks.Lock(sessionID)
	defer unlock()

	session := e.loadSession(ctx, sessionID)
	reset := session.Bind(customerID)
	if reset {
		SessionResetsTotal.Inc()
		logger.Info("session_bound", "trace_id", TraceIDFromContext(ctx), "session_id", sessionID, "customer_id", customerID)
	}
	session.MarkRecommended(served...)
	capRecommended(session)
	session.UpdatedAt = e.now()

	if err := e.sessions.SaveSession(ctx, session); err != nil {
		return reset, fmt.Errorf("save session: %w", err)
	}
	return reset, nil
}

// Session returns a copy of the stored session, nil when unknown.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	s, err := e.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// BuildProfile builds a profile outside any session. It returns nil for a
// cold-start customer.
func (e *Engine) BuildProfile(ctx context.Context, customerID uint) (*domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if customerID == 0 {
		return nil, ErrInvalidCustomer
	}
	return e.profiles.Build(ctx, NewScope(customerID, nil, e.now()))
}

// Popular serves the popularity list with no customer context, falling back
// to a random sample.
func (e *Engine) Popular(ctx context.Context, n int) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	sc := NewScope(0, nil, e.now())
	candidates, strategy := e.runChain(ctx, sc, AlgorithmPopular, n)
	return e.enrich(ctx, sc, candidates, strategy), nil
}

// excludePurchased fills sc.Excluded with the customer's purchases. A store
// failure falls back to the purchase history, then to no exclusions.
func (e *Engine) excludePurchased(ctx context.Context, sc *Scope) {
	traceID := TraceIDFromContext(ctx)

	purchased, err := e.data.purchases.FindPurchasedProductIDs(ctx, sc.CustomerID)
	if err == nil {
		for _, id := range purchased {
			sc.Excluded[id] = struct{}{}
		}
		return
	}
	FallbacksTotal.WithLabelValues(exclusionSource, fallbackReason(err)).Inc()
	logger.Warn("load_purchased_failed", "trace_id", traceID, "customer_id", sc.CustomerID, "error", err)

	history, err := e.data.history(ctx, sc)
	if err != nil {
		FallbacksTotal.WithLabelValues(exclusionSource, fallbackReason(err)).Inc()
		logger.Warn("load_history_failed", "trace_id", traceID, "customer_id", sc.CustomerID, "error", err)
		return
	}
	for _, h := range history {
		sc.Excluded[h.ProductID] = struct{}{}
	}
}

func (e *Engine) loadSession(ctx context.Context, sessionID string) *domain.Session {
	session, err := e.sessions.GetSession(ctx, sessionID)
	if err != nil {
		logger.Error("load_session_failed", "trace_id", TraceIDFromContext(ctx), "session_id", sessionID, "error", err)
	}
	if session == nil {
		session = domain.NewSession(sessionID)
	}
	return session
}

// runChain tries requested, then popular, then random, and returns the first
// non-empty list with the strategy that produced it.
func (e *Engine) runChain(ctx context.Context, sc *Scope, requested Algorithm, n int) ([]domain.ScoredCandidate, Algorithm) {
	chain := []Algorithm{requested}
	for _, fb := range []Algorithm{AlgorithmPopular, strategyRandom} {
		if fb != requested {
			chain = append(chain, fb)
		}
	}

	for _, strategy := range chain {
		candidates, err := e.runScorer(ctx, sc, strategy, n)
		if err == nil && len(candidates) > 0 {
			return candidates, strategy
		}
		if err == nil {
			err = fmt.Errorf("%w: empty result", ErrDataSparsity)
		}
		FallbacksTotal.WithLabelValues(strategy.String(), fallbackReason(err)).Inc()
		logger.Debug("strategy_fallback",
			"trace_id", TraceIDFromContext(ctx),
			"customer_id", sc.CustomerID,
			"strategy", strategy,
			"error", err,
		)
	}

	return nil, strategyRandom
}

func (e *Engine) runScorer(ctx context.Context, sc *Scope, strategy Algorithm, n int) ([]domain.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	fn, ok := e.strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}

	start := time.Now()
	defer func() {
		ScorerDuration.WithLabelValues(strategy.String()).Observe(time.Since(start).Seconds())
	}()

	return fn(ctx, sc, n)
}

// enrich attaches catalog details and average ratings. Products that vanished
// from the catalog are dropped.
func (e *Engine) enrich(ctx context.Context, sc *Scope, candidates []domain.ScoredCandidate, strategy Algorithm) []domain.Recommendation {
	if len(candidates) == 0 {
		return []domain.Recommendation{}
	}
	traceID := TraceIDFromContext(ctx)

	ids := make([]uint64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ProductID
	}
	products, err := e.data.productsByID(ctx, sc, ids)
	if err != nil {
		logger.Error("enrich_products_failed", "trace_id", traceID, "error", err)
		return []domain.Recommendation{}
	}
	stats, err := e.data.productStats(ctx, sc)
	if err != nil {
		logger.Warn("enrich_stats_failed", "trace_id", traceID, "error", err)
		stats = &statsIndex{}
	}

	out := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		p, ok := products[c.ProductID]
		if !ok {
			continue
		}
		avg := stats.byID[c.ProductID].AvgRating
		if strategy == strategyRandom {
			avg = neutralRating
		}
		out = append(out, domain.Recommendation{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Brand:     p.Brand,
			Price:     p.Price,
			Score:     math.Min(1, math.Max(0, c.Score)),
			AvgRating: avg,
			Reason:    c.Reason,
		})
	}
	return out
}
