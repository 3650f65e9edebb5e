package trade

import (
	"context"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically: every repository handed to fn
// shares one database transaction that is committed when fn returns nil.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories a transition touches
type TransactionalRepositories interface {
	Orders() trade.OrderRepository
	Products() inventory.ProductRepository
	Batches() inventory.BatchRepository
	Suppliers() partner.SupplierRepository
	Technicians() partner.TechnicianRepository
	// BatchNumbers scans issued batch numbers for the numbering generator
	BatchNumbers() numbering.Store
}

// NoOpTransactionScope runs fn against fixed repositories without a transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	OrderRepo      trade.OrderRepository
	ProductRepo    inventory.ProductRepository
	BatchRepo      inventory.BatchRepository
	SupplierRepo   partner.SupplierRepository
	TechnicianRepo partner.TechnicianRepository
	NumberStore    numbering.Store
}

// Execute runs fn without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Orders() trade.OrderRepository             { return s.OrderRepo }
func (s *NoOpTransactionScope) Products() inventory.ProductRepository     { return s.ProductRepo }
func (s *NoOpTransactionScope) Batches() inventory.BatchRepository        { return s.BatchRepo }
func (s *NoOpTransactionScope) Suppliers() partner.SupplierRepository     { return s.SupplierRepo }
func (s *NoOpTransactionScope) Technicians() partner.TechnicianRepository { return s.TechnicianRepo }
func (s *NoOpTransactionScope) BatchNumbers() numbering.Store             { return s.NumberStore }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
