package cost

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// MovingAverageCostStrategy prices every unit at the quantity-weighted average of all batches
type MovingAverageCostStrategy struct {
	strategy.BaseStrategy
}

// NewMovingAverageCostStrategy creates a new moving average cost strategy
func NewMovingAverageCostStrategy() *MovingAverageCostStrategy {
	return &MovingAverageCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"moving_average",
			strategy.StrategyTypeCost,
			"Weighted moving average cost calculation",
		),
	}
}

// Method returns the costing method
func (s *MovingAverageCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodMovingAverage
}

// CalculateCost calculates the cost using the weighted average of all batches
func (s *MovingAverageCostStrategy) CalculateCost(
	ctx context.Context,
	costCtx strategy.CostContext,
	entries []strategy.StockEntry,
) (strategy.CostResult, error) {
	if costCtx.Quantity.IsNegative() {
		return strategy.CostResult{}, errors.New("quantity cannot be negative")
	}

	totalQty := decimal.Zero
	totalValue := decimal.Zero
	for _, entry := range entries {
		if !entry.Quantity.IsPositive() {
			continue
		}
		totalQty = totalQty.Add(entry.Quantity)
		totalValue = totalValue.Add(entry.Quantity.Mul(entry.UnitCost))
	}

	avg := decimal.Zero
	if !totalQty.IsZero() {
		avg = totalValue.Div(totalQty)
	}

	remaining := decimal.Zero
	if costCtx.Quantity.GreaterThan(totalQty) {
		remaining = costCtx.Quantity.Sub(totalQty)
	}

	return strategy.CostResult{
		UnitCost:     avg,
		TotalCost:    avg.Mul(costCtx.Quantity),
		Method:       strategy.CostMethodMovingAverage,
		RemainingQty: remaining,
	}, nil
}
