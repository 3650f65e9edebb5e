package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository persists products and their stock counters
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	// StockLevels returns on-hand stock keyed by product ID
	StockLevels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	// DeductStock atomically lowers stock; it fails with ErrInsufficientStock rather than going negative
	DeductStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error
	// AddStock atomically raises stock
	AddStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error
}

// BatchRepository persists the batch costing ledger
type BatchRepository interface {
	Create(ctx context.Context, batch *StockBatch) error
	// FindByProduct returns batches with positive quantity ordered by entry date then creation
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockBatch, error)
	FindBySupplierPurchase(ctx context.Context, supplierPurchaseID uuid.UUID) ([]StockBatch, error)
	// FindExpiring returns batches whose expiry falls before the cutoff
	FindExpiring(ctx context.Context, before time.Time) ([]StockBatch, error)
}
