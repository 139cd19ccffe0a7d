package recommend

// Config tunes the engine. Non-positive thresholds, counts and decay are
// replaced by DefaultConfig; Parallel and Seed are taken as given.
type Config struct {
	// NeighborMinSimilarity is the cosine similarity a neighbour must exceed.
	NeighborMinSimilarity float64
	NeighborCount         int
	// LatentMinScore is the predicted rating an unseen product must exceed.
	LatentMinScore float64
	MaxRank        int
	// DecayDays is the e-folding time of the rating recency weight.
	DecayDays float64
	// Parallel runs the hybrid sources concurrently.
	Parallel bool
	// Seed fixes the noise and sampling source. Zero seeds from the clock.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		NeighborMinSimilarity: 0.1,
		NeighborCount:         10,
		LatentMinScore:        0.1,
		MaxRank:               20,
		DecayDays:             30,
		Parallel:              true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NeighborMinSimilarity <= 0 {
		c.NeighborMinSimilarity = d.NeighborMinSimilarity
	}
	if c.LatentMinScore <= 0 {
		c.LatentMinScore = d.LatentMinScore
	}
	if c.NeighborCount <= 0 {
		c.NeighborCount = d.NeighborCount
	}
	if c.MaxRank < 2 {
		c.MaxRank = d.MaxRank
	}
	if c.DecayDays <= 0 {
		c.DecayDays = d.DecayDays
	}
	return c
}
