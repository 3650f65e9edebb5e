package report

import (
	"time"

	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineFact is one live order line as stored
type LineFact struct {
	LineTotal    decimal.Decimal
	UnitCost     decimal.Decimal
	Quantity     decimal.Decimal
	TechnicianID *uuid.UUID
	ProductID    *uuid.UUID
	CategoryID   *uuid.UUID
}

// Cost is unit cost times quantity
func (l LineFact) Cost() decimal.Decimal {
	return l.UnitCost.Mul(l.Quantity)
}

// OrderFact is a live order with its live lines
type OrderFact struct {
	OrderID       uuid.UUID
	OrderNumber   string
	Kind          trade.Kind
	BranchID      uuid.UUID
	OrderDate     time.Time
	Status        trade.Status
	PaymentType   trade.PaymentType
	PaymentStatus trade.PaymentStatus
	SupplierID    *uuid.UUID
	Lines         []LineFact
}

// Total sums line totals. The stored order total is never read.
func (o OrderFact) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

// LineCost sums line costs
func (o OrderFact) LineCost() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Cost())
	}
	return total
}

func (o OrderFact) isPaid() bool {
	return o.PaymentStatus == trade.PaymentStatusPaid
}

// isSale is true for kinds that earn revenue
func (o OrderFact) isSale() bool {
	return o.Kind == trade.KindProduct || o.Kind == trade.KindService
}

// LedgerEntry is a direct income or expense record
type LedgerEntry struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	Date     time.Time
	Amount   decimal.Decimal
}

// Facts is everything the aggregator reads
type Facts struct {
	Orders   []OrderFact
	Incomes  []LedgerEntry
	Expenses []LedgerEntry
}
