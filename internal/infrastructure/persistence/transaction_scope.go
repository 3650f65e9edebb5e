package persistence

import (
	"context"

	apptrade "github.com/erp/procurement/internal/application/trade"
	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope runs a unit of work inside one GORM transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute commits when fn returns nil and rolls back otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to the open transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Orders() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) Products() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) Batches() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

func (r *gormTransactionalRepositories) Suppliers() partner.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

func (r *gormTransactionalRepositories) Technicians() partner.TechnicianRepository {
	return NewGormTechnicianRepository(r.tx)
}

func (r *gormTransactionalRepositories) BatchNumbers() numbering.Store {
	return NewBatchNumberStore(r.tx)
}

var (
	_ apptrade.TransactionScope          = (*GormTransactionScope)(nil)
	_ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
