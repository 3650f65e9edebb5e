package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CostMethod represents the inventory costing method
type CostMethod string

const (
	CostMethodFIFO          CostMethod = "fifo"
	CostMethodMovingAverage CostMethod = "moving_average"
)

// String returns the string representation of the cost method
func (m CostMethod) String() string {
	return string(m)
}

// IsValid reports whether m names a known method
func (m CostMethod) IsValid() bool {
	return m == CostMethodFIFO || m == CostMethodMovingAverage
}

// StockEntry is a read-only view of one inventory batch used for costing
type StockEntry struct {
	ID          string
	ProductID   string
	BatchNumber string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	EntryDate   time.Time
	// CreatedAt breaks ties between batches sharing an entry date
	CreatedAt time.Time
}

// CostContext describes the quantity being costed
type CostContext struct {
	ProductID string
	Quantity  decimal.Decimal
	Date      time.Time
}

// ConsumedEntry records how much of a batch a costing pass drew on
type ConsumedEntry struct {
	Entry    StockEntry
	Quantity decimal.Decimal
}

// CostResult contains the result of cost calculation
type CostResult struct {
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
	Method    CostMethod
	Consumed  []ConsumedEntry
	// RemainingQty is the part of the request no batch could cover
	RemainingQty decimal.Decimal
}

// CostCalculationStrategy computes a unit cost for a requested quantity.
// Implementations must not mutate the entries they are given.
type CostCalculationStrategy interface {
	Strategy
	Method() CostMethod
	CalculateCost(ctx context.Context, costCtx CostContext, entries []StockEntry) (CostResult, error)
}
