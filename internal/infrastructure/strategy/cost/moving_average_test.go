package cost

import (
	"context"
	"testing"

	"github.com/erp/procurement/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageCostStrategy_CalculateCost(t *testing.T) {
	s := NewMovingAverageCostStrategy()
	assert.Equal(t, strategy.CostMethodMovingAverage, s.Method())

	entries := []strategy.StockEntry{
		{ID: "1", Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(10)},
		{ID: "2", Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(20)},
	}

	result, err := s.CalculateCost(context.Background(), strategy.CostContext{Quantity: decimal.NewFromInt(50)}, entries)
	require.NoError(t, err)
	assert.True(t, result.UnitCost.Equal(decimal.NewFromInt(15)))
	assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(750)))
	assert.True(t, result.RemainingQty.IsZero())
}

func TestMovingAverageCostStrategy_NoEntries(t *testing.T) {
	s := NewMovingAverageCostStrategy()

	result, err := s.CalculateCost(context.Background(), strategy.CostContext{Quantity: decimal.NewFromInt(2)}, nil)
	require.NoError(t, err)
	assert.True(t, result.UnitCost.IsZero())
	assert.True(t, result.RemainingQty.Equal(decimal.NewFromInt(2)))
}
