package partner

import (
	"github.com/erp/procurement/internal/domain/shared"
)

// Supplier sells products to the business through supplier purchases
type Supplier struct {
	shared.BaseAggregateRoot
	CounterpartBalance
	Code string
	Name string
}

// NewSupplier creates a supplier with a zero balance
func NewSupplier(code, name string) (*Supplier, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
	}, nil
}
