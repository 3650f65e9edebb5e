package persistence

import (
	"context"

	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/domain/trade"
	"gorm.io/gorm"
)

// ColumnNumberStore scans one unique column for the highest sequence under a stem.
// The raw table is queried, so soft-deleted rows still hold their numbers.
type ColumnNumberStore struct {
	db     *gorm.DB
	table  string
	column string
}

// NewOrderNumberStore scans order_number of the kind's table
func NewOrderNumberStore(db *gorm.DB, kind trade.Kind) (*ColumnNumberStore, error) {
	tables, ok := orderTables[kind]
	if !ok {
		return nil, unknownKind(kind)
	}
	return &ColumnNumberStore{db: db, table: tables.header, column: "order_number"}, nil
}

// NewBatchNumberStore scans stock_batches.batch_number
func NewBatchNumberStore(db *gorm.DB) *ColumnNumberStore {
	return &ColumnNumberStore{db: db, table: "stock_batches", column: "batch_number"}
}

// MaxSequence returns the largest sequence issued under stem, or zero
func (s *ColumnNumberStore) MaxSequence(ctx context.Context, stem string) (int, error) {
	var numbers []string
	if err := s.db.WithContext(ctx).
		Table(s.table).
		Where(s.column+" LIKE ?", stem+"%").
		Pluck(s.column, &numbers).Error; err != nil {
		return 0, err
	}
	highest := 0
	for _, n := range numbers {
		if seq, ok := numbering.SequenceOf(n, stem); ok && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

var _ numbering.Store = (*ColumnNumberStore)(nil)
