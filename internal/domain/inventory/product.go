package inventory

import (
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a stocked catalog item. Stock is the authoritative on-hand counter.
type Product struct {
	shared.BaseAggregateRoot
	Code       string
	Name       string
	CategoryID *uuid.UUID
	Stock      decimal.Decimal
}

// NewProduct creates a product with zero stock
func NewProduct(code, name string, categoryID *uuid.UUID) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		CategoryID:        categoryID,
		Stock:             decimal.Zero,
	}, nil
}

// AddStock raises the counter by a received quantity
func (p *Product) AddStock(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	p.Stock = p.Stock.Add(qty)
	p.Touch()
	return nil
}

// DeductStock lowers the counter, refusing to go below zero
func (p *Product) DeductStock(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if qty.GreaterThan(p.Stock) {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock for %s: need %s, have %s", p.Code, qty, p.Stock))
	}
	p.Stock = p.Stock.Sub(qty)
	p.Touch()
	return nil
}
