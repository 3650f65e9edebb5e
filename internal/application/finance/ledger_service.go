package finance

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/finance"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ===================== Ledger DTOs =====================

// RecordIncomeRequest books money received outside any purchase order
type RecordIncomeRequest struct {
	BranchID    uuid.UUID       `json:"branch_id" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
}

// RecordExpenseRequest books money spent outside any purchase order
type RecordExpenseRequest struct {
	BranchID    uuid.UUID       `json:"branch_id" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Category    string          `json:"category" binding:"omitempty,oneof=RENT UTILITIES SALARY TRANSPORT MAINTENANCE OTHER"`
	Description string          `json:"description" binding:"max=500"`
}

// LedgerEntryResponse is a direct income or expense in API responses
type LedgerEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	BranchID    uuid.UUID       `json:"branch_id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func incomeResponse(r *finance.IncomeRecord) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		ID:          r.ID,
		BranchID:    r.BranchID,
		Date:        r.Date,
		Amount:      r.Amount,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

func expenseResponse(r *finance.ExpenseRecord) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		ID:          r.ID,
		BranchID:    r.BranchID,
		Date:        r.Date,
		Amount:      r.Amount,
		Category:    string(r.Category),
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

// ===================== Ledger Service =====================

// LedgerService records direct income and expenses that feed the reports
type LedgerService struct {
	repo finance.LedgerRepository
	now  func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(repo finance.LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo, now: time.Now}
}

// RecordIncome creates an income record
func (s *LedgerService) RecordIncome(ctx context.Context, req RecordIncomeRequest) (*LedgerEntryResponse, error) {
	record, err := finance.NewIncomeRecord(req.BranchID, req.Date, req.Amount, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateIncome(ctx, record); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("income recorded",
		zap.String("income_id", record.ID.String()),
		zap.String("amount", record.Amount.String()))
	return incomeResponse(record), nil
}

// RecordExpense creates an expense record
func (s *LedgerService) RecordExpense(ctx context.Context, req RecordExpenseRequest) (*LedgerEntryResponse, error) {
	record, err := finance.NewExpenseRecord(req.BranchID, req.Date, req.Amount, finance.ExpenseCategory(req.Category), req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateExpense(ctx, record); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("expense recorded",
		zap.String("expense_id", record.ID.String()),
		zap.String("category", string(record.Category)),
		zap.String("amount", record.Amount.String()))
	return expenseResponse(record), nil
}

// DeleteIncome soft deletes an income record so reports stop counting it
func (s *LedgerService) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	record, err := s.repo.FindIncomeByID(ctx, id)
	if err != nil {
		return err
	}
	record.SoftDelete(s.now())
	return s.repo.SaveIncome(ctx, record)
}

// DeleteExpense soft deletes an expense record
func (s *LedgerService) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	record, err := s.repo.FindExpenseByID(ctx, id)
	if err != nil {
		return err
	}
	record.SoftDelete(s.now())
	return s.repo.SaveExpense(ctx, record)
}
