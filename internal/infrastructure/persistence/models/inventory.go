package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for a stocked product
type ProductModel struct {
	AggregateModel
	Code       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name       string          `gorm:"type:varchar(200);not null"`
	CategoryID *uuid.UUID      `gorm:"type:uuid;index"`
	Stock      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain Product
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		CategoryID:        m.CategoryID,
		Stock:             m.Stock,
	}
}

// ProductModelFromDomain creates a model from a domain Product
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{
		Code:       p.Code,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Stock:      p.Stock,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// StockBatchModel is one received lot
type StockBatchModel struct {
	BaseModel
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_batch_product_entry,priority:1"`
	BatchNumber        string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EntryDate          time.Time       `gorm:"not null;index:idx_stock_batch_product_entry,priority:2"`
	ExpiryDate         *time.Time      `gorm:"index"`
	SupplierPurchaseID *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StockBatchModel) TableName() string {
	return "stock_batches"
}

// ToDomain converts the model to a domain StockBatch
func (m *StockBatchModel) ToDomain() *inventory.StockBatch {
	return &inventory.StockBatch{
		BaseEntity:         m.BaseModel.ToDomain(),
		ProductID:          m.ProductID,
		BatchNumber:        m.BatchNumber,
		Quantity:           m.Quantity,
		UnitCost:           m.UnitCost,
		EntryDate:          m.EntryDate,
		ExpiryDate:         m.ExpiryDate,
		SupplierPurchaseID: m.SupplierPurchaseID,
	}
}

// StockBatchModelFromDomain creates a model from a domain StockBatch
func StockBatchModelFromDomain(b *inventory.StockBatch) *StockBatchModel {
	m := &StockBatchModel{
		ProductID:          b.ProductID,
		BatchNumber:        b.BatchNumber,
		Quantity:           b.Quantity,
		UnitCost:           b.UnitCost,
		EntryDate:          b.EntryDate,
		ExpiryDate:         b.ExpiryDate,
		SupplierPurchaseID: b.SupplierPurchaseID,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}
