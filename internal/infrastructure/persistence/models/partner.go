package models

import (
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// BalanceColumns are the running totals shared by suppliers and technicians
type BalanceColumns struct {
	TotalPO decimal.Decimal `gorm:"column:total_po;type:decimal(18,4);not null;default:0"`
	Piutang decimal.Decimal `gorm:"column:piutang;type:decimal(18,4);not null;default:0"`
}

func (b BalanceColumns) toDomain() partner.CounterpartBalance {
	return partner.CounterpartBalance{TotalPO: b.TotalPO, Piutang: b.Piutang}
}

func balanceFromDomain(b partner.CounterpartBalance) BalanceColumns {
	return BalanceColumns{TotalPO: b.TotalPO, Piutang: b.Piutang}
}

// SupplierModel is the persistence model for a supplier
type SupplierModel struct {
	AggregateModel
	BalanceColumns
	Code string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the model to a domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		CounterpartBalance: m.BalanceColumns.toDomain(),
		Code:               m.Code,
		Name:               m.Name,
	}
}

// SupplierModelFromDomain creates a model from a domain Supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		BalanceColumns: balanceFromDomain(s.CounterpartBalance),
		Code:           s.Code,
		Name:           s.Name,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// TechnicianModel is the persistence model for a technician
type TechnicianModel struct {
	AggregateModel
	BalanceColumns
	Code       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name       string          `gorm:"type:varchar(200);not null"`
	ServiceFee decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (TechnicianModel) TableName() string {
	return "technicians"
}

// ToDomain converts the model to a domain Technician
func (m *TechnicianModel) ToDomain() *partner.Technician {
	return &partner.Technician{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		CounterpartBalance: m.BalanceColumns.toDomain(),
		Code:               m.Code,
		Name:               m.Name,
		ServiceFee:         m.ServiceFee,
	}
}

// TechnicianModelFromDomain creates a model from a domain Technician
func TechnicianModelFromDomain(t *partner.Technician) *TechnicianModel {
	m := &TechnicianModel{
		BalanceColumns: balanceFromDomain(t.CounterpartBalance),
		Code:           t.Code,
		Name:           t.Name,
		ServiceFee:     t.ServiceFee,
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m
}
