package finance

import (
	"context"

	"github.com/google/uuid"
)

// LedgerRepository persists direct income and expense records
type LedgerRepository interface {
	CreateIncome(ctx context.Context, record *IncomeRecord) error
	CreateExpense(ctx context.Context, record *ExpenseRecord) error
	FindIncomeByID(ctx context.Context, id uuid.UUID) (*IncomeRecord, error)
	FindExpenseByID(ctx context.Context, id uuid.UUID) (*ExpenseRecord, error)
	SaveIncome(ctx context.Context, record *IncomeRecord) error
	SaveExpense(ctx context.Context, record *ExpenseRecord) error
}
