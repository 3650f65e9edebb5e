package persistence

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/report"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// factChunkSize bounds the IN list used when loading lines
const factChunkSize = 500

// GormFactRepository implements report.FactRepository with plain selects over the order and ledger tables
type GormFactRepository struct {
	db *gorm.DB
}

// NewGormFactRepository creates a new GormFactRepository
func NewGormFactRepository(db *gorm.DB) *GormFactRepository {
	return &GormFactRepository{db: db}
}

type orderFactRow struct {
	ID            uuid.UUID
	OrderNumber   string
	BranchID      uuid.UUID
	OrderDate     time.Time
	Status        trade.Status
	PaymentType   trade.PaymentType
	PaymentStatus trade.PaymentStatus
	SupplierID    *uuid.UUID
}

type lineFactRow struct {
	OrderID      uuid.UUID
	LineTotal    decimal.Decimal
	UnitCost     decimal.Decimal
	Quantity     decimal.Decimal
	TechnicianID *uuid.UUID
	ProductID    *uuid.UUID
	CategoryID   *uuid.UUID
}

// LoadOrders returns live orders of one kind inside the date range and branch scope, with live lines
func (r *GormFactRepository) LoadOrders(ctx context.Context, kind trade.Kind, filter report.Filter) ([]report.OrderFact, error) {
	tables, ok := orderTables[kind]
	if !ok {
		return nil, unknownKind(kind)
	}

	cols := "id, order_number, branch_id, order_date, status, payment_type, payment_status"
	if kind == trade.KindSupplier {
		cols += ", supplier_id"
	}
	query := r.db.WithContext(ctx).Table(tables.header).Select(cols).Where("deleted_at IS NULL")
	if !filter.DateFrom.IsZero() {
		query = query.Where("order_date >= ? AND order_date < ?", filter.DateFrom, filter.DateUntil.AddDate(0, 0, 1))
	}
	if filter.BranchScope != nil {
		query = query.Where("branch_id = ?", *filter.BranchScope)
	}

	var headers []orderFactRow
	if err := query.Order("order_date").Scan(&headers).Error; err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return []report.OrderFact{}, nil
	}

	ids := make([]uuid.UUID, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}
	lines, err := r.loadLines(ctx, kind, tables.lines, ids)
	if err != nil {
		return nil, err
	}

	facts := make([]report.OrderFact, len(headers))
	for i, h := range headers {
		facts[i] = report.OrderFact{
			OrderID:       h.ID,
			OrderNumber:   h.OrderNumber,
			Kind:          kind,
			BranchID:      h.BranchID,
			OrderDate:     h.OrderDate,
			Status:        h.Status,
			PaymentType:   h.PaymentType,
			PaymentStatus: h.PaymentStatus,
			SupplierID:    h.SupplierID,
			Lines:         lines[h.ID],
		}
	}
	return facts, nil
}

func (r *GormFactRepository) loadLines(ctx context.Context, kind trade.Kind, table string, orderIDs []uuid.UUID) (map[uuid.UUID][]report.LineFact, error) {
	var selectCols, join string
	switch kind {
	case trade.KindService:
		selectCols = "l.order_id, l.line_total, l.unit_cost, l.quantity, l.technician_id"
	default:
		selectCols = "l.order_id, l.line_total, l.unit_cost, l.quantity, l.product_id, p.category_id"
		join = "LEFT JOIN products p ON p.id = l.product_id"
	}

	out := make(map[uuid.UUID][]report.LineFact, len(orderIDs))
	for start := 0; start < len(orderIDs); start += factChunkSize {
		end := min(start+factChunkSize, len(orderIDs))

		query := r.db.WithContext(ctx).Table(table + " l").Select(selectCols)
		if join != "" {
			query = query.Joins(join)
		}
		var rows []lineFactRow
		if err := query.
			Where("l.order_id IN ? AND l.deleted_at IS NULL", orderIDs[start:end]).
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			out[row.OrderID] = append(out[row.OrderID], report.LineFact{
				LineTotal:    row.LineTotal,
				UnitCost:     row.UnitCost,
				Quantity:     row.Quantity,
				TechnicianID: row.TechnicianID,
				ProductID:    row.ProductID,
				CategoryID:   row.CategoryID,
			})
		}
	}
	return out, nil
}

// LoadIncomes returns live direct income entries in range and scope
func (r *GormFactRepository) LoadIncomes(ctx context.Context, filter report.Filter) ([]report.LedgerEntry, error) {
	return r.loadLedger(ctx, "income_records", filter)
}

// LoadExpenses returns live direct expense entries in range and scope
func (r *GormFactRepository) LoadExpenses(ctx context.Context, filter report.Filter) ([]report.LedgerEntry, error) {
	return r.loadLedger(ctx, "expense_records", filter)
}

func (r *GormFactRepository) loadLedger(ctx context.Context, table string, filter report.Filter) ([]report.LedgerEntry, error) {
	query := r.db.WithContext(ctx).Table(table).
		Select("id, branch_id, entry_date AS date, amount").
		Where("deleted_at IS NULL")
	if !filter.DateFrom.IsZero() {
		query = query.Where("entry_date >= ? AND entry_date < ?", filter.DateFrom, filter.DateUntil.AddDate(0, 0, 1))
	}
	if filter.BranchScope != nil {
		query = query.Where("branch_id = ?", *filter.BranchScope)
	}
	var entries []report.LedgerEntry
	if err := query.Order("entry_date").Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var _ report.FactRepository = (*GormFactRepository)(nil)
