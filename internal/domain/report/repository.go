package report

import (
	"context"

	"github.com/erp/procurement/internal/domain/trade"
)

// FactRepository loads raw report facts. Implementations push the date range,
// branch scope and soft-delete exclusion down to the store; the Aggregator reapplies
// the whole filter so any superset is correct.
type FactRepository interface {
	LoadOrders(ctx context.Context, kind trade.Kind, filter Filter) ([]OrderFact, error)
	LoadIncomes(ctx context.Context, filter Filter) ([]LedgerEntry, error)
	LoadExpenses(ctx context.Context, filter Filter) ([]LedgerEntry, error)
}
