package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBatchRepository implements inventory.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// Create inserts a batch. A taken batch number is reported as numbering.ErrDuplicate.
func (r *GormBatchRepository) Create(ctx context.Context, batch *inventory.StockBatch) error {
	model := models.StockBatchModelFromDomain(batch)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return numbering.ErrDuplicate
	}
	return err
}

// FindByProduct returns batches with positive quantity, oldest entry first
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	return r.find(r.db.WithContext(ctx).
		Where("product_id = ? AND quantity > 0", productID).
		Order("entry_date ASC, created_at ASC"))
}

// FindBySupplierPurchase returns the batches a supplier purchase created
func (r *GormBatchRepository) FindBySupplierPurchase(ctx context.Context, supplierPurchaseID uuid.UUID) ([]inventory.StockBatch, error) {
	return r.find(r.db.WithContext(ctx).
		Where("supplier_purchase_id = ?", supplierPurchaseID).
		Order("created_at ASC"))
}

// FindExpiring returns batches that expire before the cutoff, soonest first
func (r *GormBatchRepository) FindExpiring(ctx context.Context, before time.Time) ([]inventory.StockBatch, error) {
	return r.find(r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date < ? AND quantity > 0", before).
		Order("expiry_date ASC"))
}

func (r *GormBatchRepository) find(query *gorm.DB) ([]inventory.StockBatch, error) {
	var rows []models.StockBatchModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	batches := make([]inventory.StockBatch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches, nil
}

var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
