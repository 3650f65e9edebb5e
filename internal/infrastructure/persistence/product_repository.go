package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements inventory.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the products that exist among ids
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	if len(ids) == 0 {
		return []inventory.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]inventory.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Save inserts or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
}

// StockLevels returns on-hand stock keyed by product ID. Unknown products are omitted.
func (r *GormProductRepository) StockLevels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	levels := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return levels, nil
	}
	var rows []struct {
		ID    uuid.UUID
		Stock decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Select("id, stock").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		levels[row.ID] = row.Stock
	}
	return levels, nil
}

// DeductStock lowers stock in a single conditional UPDATE so it can never go negative
func (r *GormProductRepository) DeductStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	product, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return shared.NewDomainError(shared.ErrInsufficientStock.Code,
		fmt.Sprintf("Insufficient stock for %s: need %s, have %s", product.Code, qty, product.Stock))
}

// AddStock raises stock atomically
func (r *GormProductRepository) AddStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", qty),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ inventory.ProductRepository = (*GormProductRepository)(nil)
