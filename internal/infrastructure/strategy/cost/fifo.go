package cost

import (
	"context"
	"errors"
	"sort"

	"github.com/erp/procurement/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// FIFOCostStrategy blends batch costs oldest-entry-first to price a requested quantity.
// Batches are only read; their quantities are never decremented.
type FIFOCostStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOCostStrategy creates a new FIFO cost strategy
func NewFIFOCostStrategy() *FIFOCostStrategy {
	return &FIFOCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo",
			strategy.StrategyTypeCost,
			"Weighted average over batches consumed oldest-entry-first",
		),
	}
}

// Method returns the costing method
func (s *FIFOCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodFIFO
}

// CalculateCost walks the batches oldest-first and divides the consumed cost by the
// full requested quantity, so uncovered quantity is priced at zero.
func (s *FIFOCostStrategy) CalculateCost(
	ctx context.Context,
	costCtx strategy.CostContext,
	entries []strategy.StockEntry,
) (strategy.CostResult, error) {
	if costCtx.Quantity.IsNegative() {
		return strategy.CostResult{}, errors.New("quantity cannot be negative")
	}

	sorted := make([]strategy.StockEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].EntryDate.Equal(sorted[j].EntryDate) {
			return sorted[i].EntryDate.Before(sorted[j].EntryDate)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	remaining := costCtx.Quantity
	totalCost := decimal.Zero
	consumed := make([]strategy.ConsumedEntry, 0)

	for _, entry := range sorted {
		if !remaining.IsPositive() {
			break
		}
		if !entry.Quantity.IsPositive() {
			continue
		}

		used := decimal.Min(remaining, entry.Quantity)
		totalCost = totalCost.Add(used.Mul(entry.UnitCost))
		remaining = remaining.Sub(used)
		consumed = append(consumed, strategy.ConsumedEntry{Entry: entry, Quantity: used})
	}

	unitCost := decimal.Zero
	if !costCtx.Quantity.IsZero() {
		unitCost = totalCost.Div(costCtx.Quantity)
	}

	return strategy.CostResult{
		UnitCost:     unitCost,
		TotalCost:    totalCost,
		Method:       strategy.CostMethodFIFO,
		Consumed:     consumed,
		RemainingQty: remaining,
	}, nil
}
