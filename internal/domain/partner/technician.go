package partner

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Technician performs service lines and is owed their service fee
type Technician struct {
	shared.BaseAggregateRoot
	CounterpartBalance
	Code       string
	Name       string
	ServiceFee decimal.Decimal
}

// NewTechnician creates a technician with a zero balance
func NewTechnician(code, name string, serviceFee decimal.Decimal) (*Technician, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Technician code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Technician name cannot be empty")
	}
	if serviceFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Service fee cannot be negative")
	}
	return &Technician{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		ServiceFee:        serviceFee,
	}, nil
}
