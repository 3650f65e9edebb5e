package persistence

import (
	"context"

	"github.com/erp/procurement/internal/domain/finance"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerRepository implements finance.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// CreateIncome inserts a direct income record
func (r *GormLedgerRepository) CreateIncome(ctx context.Context, record *finance.IncomeRecord) error {
	return r.db.WithContext(ctx).Create(models.IncomeRecordModelFromDomain(record)).Error
}

// CreateExpense inserts a direct expense record
func (r *GormLedgerRepository) CreateExpense(ctx context.Context, record *finance.ExpenseRecord) error {
	return r.db.WithContext(ctx).Create(models.ExpenseRecordModelFromDomain(record)).Error
}

// FindIncomeByID finds a live income record
func (r *GormLedgerRepository) FindIncomeByID(ctx context.Context, id uuid.UUID) (*finance.IncomeRecord, error) {
	var model models.IncomeRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindExpenseByID finds a live expense record
func (r *GormLedgerRepository) FindExpenseByID(ctx context.Context, id uuid.UUID) (*finance.ExpenseRecord, error) {
	var model models.ExpenseRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// SaveIncome updates an income record, including its deletion mark
func (r *GormLedgerRepository) SaveIncome(ctx context.Context, record *finance.IncomeRecord) error {
	m := models.IncomeRecordModelFromDomain(record)
	return updateLedger(ctx, r.db, &models.IncomeRecordModel{}, m.ID, map[string]interface{}{
		"branch_id":   m.BranchID,
		"entry_date":  m.Date,
		"amount":      m.Amount,
		"description": m.Description,
		"deleted_at":  m.DeletedAt,
		"updated_at":  m.UpdatedAt,
	})
}

// SaveExpense updates an expense record, including its deletion mark
func (r *GormLedgerRepository) SaveExpense(ctx context.Context, record *finance.ExpenseRecord) error {
	m := models.ExpenseRecordModelFromDomain(record)
	return updateLedger(ctx, r.db, &models.ExpenseRecordModel{}, m.ID, map[string]interface{}{
		"branch_id":   m.BranchID,
		"entry_date":  m.Date,
		"amount":      m.Amount,
		"category":    m.Category,
		"description": m.Description,
		"deleted_at":  m.DeletedAt,
		"updated_at":  m.UpdatedAt,
	})
}

func updateLedger(ctx context.Context, db *gorm.DB, model interface{}, id uuid.UUID, cols map[string]interface{}) error {
	result := db.WithContext(ctx).Unscoped().Model(model).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ finance.LedgerRepository = (*GormLedgerRepository)(nil)
