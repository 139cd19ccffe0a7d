package recommend

import (
	"math"
	"mySmartMarket/domain"
)

const (
	neutralPriceAffinity = 0.5
	likedRating          = 4
)

// priceStats is the mean and population deviation of prices the customer
// rated at least likedRating.
type priceStats struct {
	mean  float64
	sigma float64
	ok    bool
}

func newPriceStats(history []domain.PurchaseDetail) priceStats {
	var prices []float64
	for _, h := range history {
		if h.Rating >= likedRating {
			prices = append(prices, h.Price)
		}
	}
	if len(prices) == 0 {
		return priceStats{}
	}

	mean := 0.0
	for _, p := range prices {
		mean += p
	}
	mean /= float64(len(prices))

	variance := 0.0
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	sigma := math.Sqrt(variance / float64(len(prices)))
	if sigma == 0 {
		sigma = math.Max(mean*0.5, 1)
	}

	return priceStats{mean: mean, sigma: sigma, ok: true}
}

// affinity decays linearly from 1 at the mean to 0.5 at one sigma and to 0
// at two sigma.
func (s priceStats) affinity(price float64) float64 {
	if !s.ok {
		return neutralPriceAffinity
	}
	diff := math.Abs(price - s.mean)
	if diff <= s.sigma {
		return 1 - 0.5*(diff/s.sigma)
	}
	return math.Max(0, 0.5-(diff-s.sigma)/s.sigma)
}
