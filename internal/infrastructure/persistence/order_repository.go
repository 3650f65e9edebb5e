package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository for all three order tables
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// orderTables maps each kind to its header and line tables
var orderTables = map[trade.Kind]struct{ header, lines string }{
	trade.KindProduct:  {"product_purchases", "product_purchase_lines"},
	trade.KindService:  {"service_purchases", "service_purchase_lines"},
	trade.KindSupplier: {"supplier_purchases", "supplier_purchase_lines"},
}

func linesInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID loads an order with its live and deleted lines
func (r *GormOrderRepository) FindByID(ctx context.Context, kind trade.Kind, id uuid.UUID) (trade.Order, error) {
	return r.find(r.db.WithContext(ctx), kind, id)
}

// FindByIDForUpdate loads an order with SELECT ... FOR UPDATE
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, kind trade.Kind, id uuid.UUID) (trade.Order, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), kind, id)
}

func (r *GormOrderRepository) find(q *gorm.DB, kind trade.Kind, id uuid.UUID) (trade.Order, error) {
	switch kind {
	case trade.KindProduct:
		return findOne(q, id, func(m *models.ProductPurchaseModel) trade.Order { return m.ToDomain() })
	case trade.KindService:
		return findOne(q, id, func(m *models.ServicePurchaseModel) trade.Order { return m.ToDomain() })
	case trade.KindSupplier:
		return findOne(q, id, func(m *models.SupplierPurchaseModel) trade.Order { return m.ToDomain() })
	}
	return nil, unknownKind(kind)
}

func findOne[M any](q *gorm.DB, id uuid.UUID, conv func(*M) trade.Order) (trade.Order, error) {
	var m M
	if err := q.Preload("Lines", linesInOrder).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return conv(&m), nil
}

// Create inserts the order and its lines. A taken order number is reported as numbering.ErrDuplicate.
func (r *GormOrderRepository) Create(ctx context.Context, order trade.Order) error {
	var model interface{}
	switch o := order.(type) {
	case *trade.ProductPurchase:
		model = models.ProductPurchaseModelFromDomain(o)
	case *trade.ServicePurchase:
		model = models.ServicePurchaseModelFromDomain(o)
	case *trade.SupplierPurchase:
		model = models.SupplierPurchaseModelFromDomain(o)
	default:
		return fmt.Errorf("%w: unsupported order type %T", shared.ErrInvalidInput, order)
	}

	// Nested so a duplicate only rolls back to a savepoint when called inside a transaction.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return numbering.ErrDuplicate
	}
	return err
}

// SaveWithLock writes the header if the stored version still matches, then upserts every line
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order trade.Order) error {
	h := order.Header()
	tables, ok := orderTables[order.Kind()]
	if !ok {
		return unknownKind(order.Kind())
	}

	var (
		cols  map[string]interface{}
		lines interface{}
		count int
	)
	switch o := order.(type) {
	case *trade.ProductPurchase:
		m := models.ProductPurchaseModelFromDomain(o)
		cols, lines, count = m.HeaderColumns(), &m.Lines, len(m.Lines)
	case *trade.ServicePurchase:
		m := models.ServicePurchaseModelFromDomain(o)
		cols, lines, count = m.HeaderColumns(), &m.Lines, len(m.Lines)
	case *trade.SupplierPurchase:
		m := models.SupplierPurchaseModelFromDomain(o)
		cols, lines, count = m.HeaderColumns(), &m.Lines, len(m.Lines)
		cols["received_at"] = m.ReceivedAt
	default:
		return fmt.Errorf("%w: unsupported order type %T", shared.ErrInvalidInput, order)
	}

	now := time.Now()
	cols["version"] = h.Version + 1
	cols["updated_at"] = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Table(tables.header).
			Where("id = ? AND version = ?", h.ID, h.Version).
			Updates(cols)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Table(tables.header).Where("id = ?", h.ID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		if count == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(lines).Error
	})
	if err != nil {
		return err
	}

	h.Version++
	h.UpdatedAt = now
	return nil
}

// OrderSortFields contains allowed sort fields for order listings
var OrderSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"order_date":   true,
	"order_number": true,
	"name":         true,
	"status":       true,
	"total_amount": true,
}

// List returns a page of live orders of one kind and the total count
func (r *GormOrderRepository) List(ctx context.Context, kind trade.Kind, filter trade.OrderListFilter) ([]trade.Order, int64, error) {
	switch kind {
	case trade.KindProduct:
		return listPage(r.db.WithContext(ctx), filter, func(m *models.ProductPurchaseModel) trade.Order { return m.ToDomain() })
	case trade.KindService:
		return listPage(r.db.WithContext(ctx), filter, func(m *models.ServicePurchaseModel) trade.Order { return m.ToDomain() })
	case trade.KindSupplier:
		return listPage(r.db.WithContext(ctx), filter, func(m *models.SupplierPurchaseModel) trade.Order { return m.ToDomain() })
	}
	return nil, 0, unknownKind(kind)
}

func listPage[M any](q *gorm.DB, filter trade.OrderListFilter, conv func(*M) trade.Order) ([]trade.Order, int64, error) {
	var zero M
	query := applyOrderFilter(q.Model(&zero), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	var rows []M
	if err := query.Preload("Lines", linesInOrder).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = conv(&rows[i])
	}
	return orders, total, nil
}

func applyOrderFilter(query *gorm.DB, filter trade.OrderListFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		query = query.Where("order_date >= ?", *filter.From)
	}
	if filter.Until != nil {
		query = query.Where("order_date < ?", filter.Until.AddDate(0, 0, 1))
	}
	return query
}

func unknownKind(kind trade.Kind) error {
	return fmt.Errorf("%w: unknown order kind %q", shared.ErrInvalidInput, kind)
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
