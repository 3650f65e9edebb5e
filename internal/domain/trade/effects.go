package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Effect is a side effect a transition asks its caller to carry out in the same transaction
type Effect interface {
	effect()
}

// CostRequest identifies a product line that needs a costing pass
type CostRequest struct {
	LineID    uuid.UUID
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// CostLines asks for weighted-average costs to be computed and applied to lines
type CostLines struct {
	Lines []CostRequest
}

// DeductStock lowers a product's stock counter by the order's total for that product
type DeductStock struct {
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
}

// ReceiveBatch creates one inventory batch and raises the product's stock counter
type ReceiveBatch struct {
	SupplierPurchaseID uuid.UUID
	SupplierID         uuid.UUID
	SupplierCode       string
	ProductID          uuid.UUID
	ProductCode        string
	Quantity           decimal.Decimal
	UnitCost           decimal.Decimal
	EntryDate          time.Time
	ExpiryDate         *time.Time
}

// Party is the kind of counterpart whose balance changes
type Party string

const (
	PartySupplier   Party = "supplier"
	PartyTechnician Party = "technician"
)

// BalanceOp names how a counterpart balance moves
type BalanceOp string

const (
	// BalanceRecord adds to total_po, and to piutang when on credit
	BalanceRecord BalanceOp = "record"
	// BalanceReverse undoes a BalanceRecord
	BalanceReverse BalanceOp = "reverse"
	// BalanceSettle lowers piutang, clamped at zero
	BalanceSettle BalanceOp = "settle"
)

// AdjustBalance changes a supplier or technician running balance
type AdjustBalance struct {
	Party   Party
	PartyID uuid.UUID
	Op      BalanceOp
	Amount  decimal.Decimal
	Credit  bool
}

func (CostLines) effect()     {}
func (DeductStock) effect()   {}
func (ReceiveBatch) effect()  {}
func (AdjustBalance) effect() {}
