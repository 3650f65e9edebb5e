package trade

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderListFilter narrows order listings
type OrderListFilter struct {
	shared.Filter
	BranchID *uuid.UUID
	Statuses []Status
	From     *time.Time
	Until    *time.Time
}

// OrderRepository persists orders of every kind
type OrderRepository interface {
	// FindByID loads an order with its live and deleted lines
	FindByID(ctx context.Context, kind Kind, id uuid.UUID) (Order, error)
	// FindByIDForUpdate loads an order and row-locks it for the current transaction
	FindByIDForUpdate(ctx context.Context, kind Kind, id uuid.UUID) (Order, error)
	// Create inserts a new order and its lines
	Create(ctx context.Context, order Order) error
	// SaveWithLock writes the order and its lines if the stored version still matches
	SaveWithLock(ctx context.Context, order Order) error
	// List returns a page of orders of one kind
	List(ctx context.Context, kind Kind, filter OrderListFilter) ([]Order, int64, error)
}
