package inventory

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Window bounds for the expiring batch query, in days
const (
	DefaultExpiryWindowDays = 30
	MaxExpiryWindowDays     = 365
)

// ExpiringBatchResponse is a batch whose expiry falls inside the requested window
type ExpiringBatchResponse struct {
	BatchID            uuid.UUID       `json:"batch_id"`
	BatchNumber        string          `json:"batch_number"`
	ProductID          uuid.UUID       `json:"product_id"`
	ProductCode        string          `json:"product_code,omitempty"`
	ProductName        string          `json:"product_name,omitempty"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	Value              decimal.Decimal `json:"value"`
	EntryDate          time.Time       `json:"entry_date"`
	ExpiryDate         time.Time       `json:"expiry_date"`
	DaysLeft           int             `json:"days_left"`
	Expired            bool            `json:"expired"`
	SupplierPurchaseID *uuid.UUID      `json:"supplier_purchase_id,omitempty"`
}

// BatchService answers read queries over the batch costing ledger
type BatchService struct {
	batches  inventory.BatchRepository
	products inventory.ProductRepository
	now      func() time.Time
}

// NewBatchService creates a new BatchService
func NewBatchService(batches inventory.BatchRepository, products inventory.ProductRepository) *BatchService {
	return &BatchService{batches: batches, products: products, now: time.Now}
}

// ExpiringBatches lists batches expiring within days from now, already expired
// batches included. A zero window uses DefaultExpiryWindowDays.
func (s *BatchService) ExpiringBatches(ctx context.Context, days int) ([]ExpiringBatchResponse, error) {
	if days == 0 {
		days = DefaultExpiryWindowDays
	}
	if days < 0 || days > MaxExpiryWindowDays {
		return nil, shared.NewDomainError("INVALID_WINDOW", "days must be between 1 and 365")
	}

	now := s.now()
	batches, err := s.batches.FindExpiring(ctx, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(batches))
	seen := make(map[uuid.UUID]bool)
	for _, b := range batches {
		if !seen[b.ProductID] {
			seen[b.ProductID] = true
			ids = append(ids, b.ProductID)
		}
	}
	products := make(map[uuid.UUID]inventory.Product, len(ids))
	if len(ids) > 0 {
		found, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			products[p.ID] = p
		}
	}

	out := make([]ExpiringBatchResponse, 0, len(batches))
	for i := range batches {
		b := &batches[i]
		if b.ExpiryDate == nil {
			continue
		}
		p := products[b.ProductID]
		out = append(out, ExpiringBatchResponse{
			BatchID:            b.ID,
			BatchNumber:        b.BatchNumber,
			ProductID:          b.ProductID,
			ProductCode:        p.Code,
			ProductName:        p.Name,
			Quantity:           b.Quantity,
			UnitCost:           b.UnitCost,
			Value:              b.TotalValue(),
			EntryDate:          b.EntryDate,
			ExpiryDate:         *b.ExpiryDate,
			DaysLeft:           daysBetween(now, *b.ExpiryDate),
			Expired:            b.IsExpired(now),
			SupplierPurchaseID: b.SupplierPurchaseID,
		})
	}

	logger.FromContext(ctx).Debug("expiring batches listed",
		zap.Int("window_days", days),
		zap.Int("count", len(out)))
	return out, nil
}

// daysBetween counts whole days from now until t, negative once t has passed
func daysBetween(now, t time.Time) int {
	return int(t.Sub(now).Hours() / 24)
}
