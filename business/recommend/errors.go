package recommend

import "errors"

var (
	// ErrInvalidCustomer and ErrInvalidLimit are caller errors and the only
	// ones Recommend returns to the gateway.
	ErrInvalidCustomer = errors.New("invalid customer id")
	ErrInvalidLimit    = errors.New("n must be at least 1")

	// ErrDataSparsity means a strategy lacks the history it needs.
	ErrDataSparsity = errors.New("insufficient data for strategy")
	// ErrComputation wraps numeric or shape failures inside a scorer.
	ErrComputation = errors.New("scorer computation failed")
	// ErrCatalogEmpty ends the fallback chain with an empty list.
	ErrCatalogEmpty = errors.New("catalog is empty")
)
