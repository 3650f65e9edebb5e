package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IncomeRecordModel is a direct income entry
type IncomeRecordModel struct {
	BaseModel
	BranchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date        time.Time       `gorm:"column:entry_date;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description string          `gorm:"type:varchar(500)"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (IncomeRecordModel) TableName() string {
	return "income_records"
}

// ToDomain converts the model to a domain IncomeRecord
func (m *IncomeRecordModel) ToDomain() *finance.IncomeRecord {
	r := &finance.IncomeRecord{
		BaseEntity:  m.BaseModel.ToDomain(),
		BranchID:    m.BranchID,
		Date:        m.Date,
		Amount:      m.Amount,
		Description: m.Description,
	}
	if m.DeletedAt.Valid {
		at := m.DeletedAt.Time
		r.DeletedAt = &at
	}
	return r
}

// IncomeRecordModelFromDomain creates a model from a domain IncomeRecord
func IncomeRecordModelFromDomain(r *finance.IncomeRecord) *IncomeRecordModel {
	m := &IncomeRecordModel{
		BranchID:    r.BranchID,
		Date:        r.Date,
		Amount:      r.Amount,
		Description: r.Description,
		DeletedAt:   deletedAt(r.DeletedAt),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// ExpenseRecordModel is a direct expense entry
type ExpenseRecordModel struct {
	BaseModel
	BranchID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	Date        time.Time               `gorm:"column:entry_date;not null;index"`
	Amount      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Category    finance.ExpenseCategory `gorm:"type:varchar(20);not null"`
	Description string                  `gorm:"type:varchar(500)"`
	DeletedAt   gorm.DeletedAt          `gorm:"index"`
}

// TableName returns the table name for GORM
func (ExpenseRecordModel) TableName() string {
	return "expense_records"
}

// ToDomain converts the model to a domain ExpenseRecord
func (m *ExpenseRecordModel) ToDomain() *finance.ExpenseRecord {
	r := &finance.ExpenseRecord{
		BaseEntity:  m.BaseModel.ToDomain(),
		BranchID:    m.BranchID,
		Date:        m.Date,
		Amount:      m.Amount,
		Category:    m.Category,
		Description: m.Description,
	}
	if m.DeletedAt.Valid {
		at := m.DeletedAt.Time
		r.DeletedAt = &at
	}
	return r
}

// ExpenseRecordModelFromDomain creates a model from a domain ExpenseRecord
func ExpenseRecordModelFromDomain(r *finance.ExpenseRecord) *ExpenseRecordModel {
	m := &ExpenseRecordModel{
		BranchID:    r.BranchID,
		Date:        r.Date,
		Amount:      r.Amount,
		Category:    r.Category,
		Description: r.Description,
		DeletedAt:   deletedAt(r.DeletedAt),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

func deletedAt(t *time.Time) gorm.DeletedAt {
	if t == nil {
		return gorm.DeletedAt{}
	}
	return gorm.DeletedAt{Time: *t, Valid: true}
}
