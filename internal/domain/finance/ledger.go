package finance

import (
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory groups direct expenses
type ExpenseCategory string

const (
	ExpenseCategoryRent        ExpenseCategory = "RENT"
	ExpenseCategoryUtilities   ExpenseCategory = "UTILITIES"
	ExpenseCategorySalary      ExpenseCategory = "SALARY"
	ExpenseCategoryTransport   ExpenseCategory = "TRANSPORT"
	ExpenseCategoryMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseCategoryOther       ExpenseCategory = "OTHER"
)

// IsValid checks if the category is known
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryRent, ExpenseCategoryUtilities, ExpenseCategorySalary,
		ExpenseCategoryTransport, ExpenseCategoryMaintenance, ExpenseCategoryOther:
		return true
	}
	return false
}

// IncomeRecord is money received outside any purchase order
type IncomeRecord struct {
	shared.BaseEntity
	BranchID    uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	DeletedAt   *time.Time
}

// ExpenseRecord is money spent outside any purchase order
type ExpenseRecord struct {
	shared.BaseEntity
	BranchID    uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal
	Category    ExpenseCategory
	Description string
	DeletedAt   *time.Time
}

func validateEntry(branchID uuid.UUID, date time.Time, amount decimal.Decimal) error {
	if branchID == uuid.Nil {
		return shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Date is required")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	return nil
}

// NewIncomeRecord creates a direct income entry
func NewIncomeRecord(branchID uuid.UUID, date time.Time, amount decimal.Decimal, description string) (*IncomeRecord, error) {
	if err := validateEntry(branchID, date, amount); err != nil {
		return nil, err
	}
	return &IncomeRecord{
		BaseEntity:  shared.NewBaseEntity(),
		BranchID:    branchID,
		Date:        date,
		Amount:      amount,
		Description: strings.TrimSpace(description),
	}, nil
}

// NewExpenseRecord creates a direct expense entry. An empty category means OTHER.
func NewExpenseRecord(branchID uuid.UUID, date time.Time, amount decimal.Decimal, category ExpenseCategory, description string) (*ExpenseRecord, error) {
	if err := validateEntry(branchID, date, amount); err != nil {
		return nil, err
	}
	if category == "" {
		category = ExpenseCategoryOther
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
	}
	return &ExpenseRecord{
		BaseEntity:  shared.NewBaseEntity(),
		BranchID:    branchID,
		Date:        date,
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(description),
	}, nil
}

// SoftDelete removes the income from reports
func (r *IncomeRecord) SoftDelete(now time.Time) {
	r.DeletedAt = &now
}

// SoftDelete removes the expense from reports
func (r *ExpenseRecord) SoftDelete(now time.Time) {
	r.DeletedAt = &now
}
