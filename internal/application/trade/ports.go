package trade

import (
	"context"

	"github.com/erp/procurement/internal/domain/shared/strategy"
)

// Locker serializes work on one key across processes
type Locker interface {
	// Obtain blocks until the key is held or ctx ends. release must be called once.
	Obtain(ctx context.Context, key string) (release func(), err error)
}

// CostStrategies resolves a cost strategy by name, the default when name is empty
type CostStrategies interface {
	GetCostStrategy(name string) (strategy.CostCalculationStrategy, error)
}

// ProofChecker confirms a payment-proof artifact exists
type ProofChecker interface {
	Exists(ctx context.Context, ref string) (bool, error)
}
