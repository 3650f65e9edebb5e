package strategy

import (
	"github.com/erp/procurement/internal/domain/shared/strategy"
	"github.com/erp/procurement/internal/infrastructure/strategy/cost"
)

// NewRegistryWithDefaults registers the built-in cost strategies and selects
// defaultMethod (fifo when empty).
func NewRegistryWithDefaults(defaultMethod string) (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	if err := r.RegisterCostStrategy(cost.NewFIFOCostStrategy()); err != nil {
		return nil, err
	}
	if err := r.RegisterCostStrategy(cost.NewMovingAverageCostStrategy()); err != nil {
		return nil, err
	}

	if defaultMethod == "" {
		defaultMethod = strategy.CostMethodFIFO.String()
	}
	if err := r.SetDefaultCostStrategy(defaultMethod); err != nil {
		return nil, err
	}
	return r, nil
}
