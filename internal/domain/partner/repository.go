package partner

import (
	"context"

	"github.com/google/uuid"
)

// SupplierRepository persists suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	// FindByIDForUpdate row-locks the supplier for a balance change
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context) ([]Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
	// SaveBalance writes only the balance columns
	SaveBalance(ctx context.Context, supplier *Supplier) error
}

// TechnicianRepository persists technicians
type TechnicianRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Technician, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Technician, error)
	FindAll(ctx context.Context) ([]Technician, error)
	Save(ctx context.Context, technician *Technician) error
	SaveBalance(ctx context.Context, technician *Technician) error
}
