package inventory

import (
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBatch is one received lot of a product. Batches form the costing ledger
// and are never decremented by sales or shipping.
type StockBatch struct {
	shared.BaseEntity
	ProductID          uuid.UUID
	BatchNumber        string
	Quantity           decimal.Decimal
	UnitCost           decimal.Decimal
	EntryDate          time.Time
	ExpiryDate         *time.Time
	SupplierPurchaseID *uuid.UUID
}

// NewStockBatch creates a batch for a received supplier line
func NewStockBatch(productID uuid.UUID, batchNumber string, quantity, unitCost decimal.Decimal, entryDate time.Time, expiry *time.Time, supplierPurchaseID *uuid.UUID) (*StockBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	return &StockBatch{
		BaseEntity:         shared.NewBaseEntity(),
		ProductID:          productID,
		BatchNumber:        batchNumber,
		Quantity:           quantity,
		UnitCost:           unitCost,
		EntryDate:          entryDate,
		ExpiryDate:         expiry,
		SupplierPurchaseID: supplierPurchaseID,
	}, nil
}

// IsExpired returns true if the batch has expired at now
func (b *StockBatch) IsExpired(now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(now)
}

// ExpiresWithin returns true if the batch expires before now+d
func (b *StockBatch) ExpiresWithin(now time.Time, d time.Duration) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(now.Add(d))
}

// TotalValue is quantity x unit cost
func (b *StockBatch) TotalValue() decimal.Decimal {
	return b.Quantity.Mul(b.UnitCost)
}

// ToStockEntry converts the batch for the costing strategies
func (b *StockBatch) ToStockEntry() strategy.StockEntry {
	return strategy.StockEntry{
		ID:          b.ID.String(),
		ProductID:   b.ProductID.String(),
		BatchNumber: b.BatchNumber,
		Quantity:    b.Quantity,
		UnitCost:    b.UnitCost,
		EntryDate:   b.EntryDate,
		CreatedAt:   b.CreatedAt,
	}
}

// ToStockEntries converts a slice of batches
func ToStockEntries(batches []StockBatch) []strategy.StockEntry {
	out := make([]strategy.StockEntry, 0, len(batches))
	for i := range batches {
		out = append(out, batches[i].ToStockEntry())
	}
	return out
}
