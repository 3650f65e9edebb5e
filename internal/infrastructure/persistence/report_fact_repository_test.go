package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/finance"
	"github.com/erp/procurement/internal/domain/report"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mayFilter() report.Filter {
	return report.Filter{
		DateFrom:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		DateUntil: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestGormFactRepository_ProductOrders(t *testing.T) {
	db := newTestDB(t)
	facts := NewGormFactRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()
	branch := uuid.New()
	category := uuid.New()
	pad := seedProduct(t, db, "P-1", 10, &category)
	fluid := seedProduct(t, db, "P-2", 10, nil)

	o, err := trade.NewProductPurchase(orderInput(branch, "PO/PRD/BR001/202505/0001", "Restock", time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = o.AddLine(pad.ID, pad.Code, pad.Name, decimal.NewFromInt(2), decimal.NewFromInt(3000))
	require.NoError(t, err)
	removed, err := o.AddLine(fluid.ID, fluid.Code, fluid.Name, decimal.NewFromInt(1), decimal.NewFromInt(800))
	require.NoError(t, err)
	require.NoError(t, o.RemoveLine(removed.ID))
	require.NoError(t, orders.Create(ctx, o))

	createProductOrder(t, db, orderInput(branch, "PO/PRD/BR001/202504/0001", "April", time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)), pad.ID, 1, 100)
	createProductOrder(t, db, orderInput(uuid.New(), "PO/PRD/BR002/202505/0001", "Elsewhere", may10), pad.ID, 1, 100)

	t.Run("range is inclusive of the last day and drops deleted lines", func(t *testing.T) {
		f := mayFilter()
		f.BranchScope = &branch
		got, err := facts.LoadOrders(ctx, trade.KindProduct, f)
		require.NoError(t, err)
		require.Len(t, got, 1)

		fact := got[0]
		assert.Equal(t, o.ID, fact.OrderID)
		assert.Equal(t, trade.KindProduct, fact.Kind)
		assert.Equal(t, trade.StatusDraft, fact.Status)
		require.Len(t, fact.Lines, 1)
		assert.True(t, decimal.NewFromInt(6000).Equal(fact.Lines[0].LineTotal))
		require.NotNil(t, fact.Lines[0].CategoryID)
		assert.Equal(t, category, *fact.Lines[0].CategoryID)
	})

	t.Run("zero date range loads everything", func(t *testing.T) {
		got, err := facts.LoadOrders(ctx, trade.KindProduct, report.Filter{})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("empty kind yields an empty slice", func(t *testing.T) {
		got, err := facts.LoadOrders(ctx, trade.KindService, mayFilter())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestGormFactRepository_ServiceAndSupplierOrders(t *testing.T) {
	db := newTestDB(t)
	facts := NewGormFactRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()
	branch := uuid.New()
	techID := uuid.New()
	supplierID := uuid.New()

	svc, err := trade.NewServicePurchase(orderInput(branch, "PO/SRV/BR001/202505/0001", "Engine tune", may10))
	require.NoError(t, err)
	line, err := svc.AddLine(uuid.New(), "Tune up", decimal.NewFromInt(1), decimal.NewFromInt(500000))
	require.NoError(t, err)
	require.NoError(t, svc.AssignTechnician(line.ID, techID, decimal.NewFromInt(100000)))
	require.NoError(t, orders.Create(ctx, svc))

	sup, err := trade.NewSupplierPurchase(orderInput(branch, "PO/SUP/SUP01/202505/0001", "Pads", may10), supplierID, "SUP01")
	require.NoError(t, err)
	_, err = sup.AddLine(uuid.New(), "P-1", "Brake pad", decimal.NewFromInt(10), decimal.NewFromInt(5000), nil)
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, sup))

	svcFacts, err := facts.LoadOrders(ctx, trade.KindService, mayFilter())
	require.NoError(t, err)
	require.Len(t, svcFacts, 1)
	require.Len(t, svcFacts[0].Lines, 1)
	require.NotNil(t, svcFacts[0].Lines[0].TechnicianID)
	assert.Equal(t, techID, *svcFacts[0].Lines[0].TechnicianID)
	assert.True(t, decimal.NewFromInt(100000).Equal(svcFacts[0].Lines[0].UnitCost))

	supFacts, err := facts.LoadOrders(ctx, trade.KindSupplier, mayFilter())
	require.NoError(t, err)
	require.Len(t, supFacts, 1)
	require.NotNil(t, supFacts[0].SupplierID)
	assert.Equal(t, supplierID, *supFacts[0].SupplierID)
	assert.Equal(t, trade.StatusRequested, supFacts[0].Status)
	assert.True(t, decimal.NewFromInt(50000).Equal(supFacts[0].Total()))
}

func TestGormFactRepository_Ledger(t *testing.T) {
	db := newTestDB(t)
	facts := NewGormFactRepository(db)
	ledger := NewGormLedgerRepository(db)
	ctx := context.Background()
	branch := uuid.New()

	inMay, err := finance.NewIncomeRecord(branch, may10, decimal.NewFromInt(200000), "Scrap")
	require.NoError(t, err)
	inJune, err := finance.NewIncomeRecord(branch, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1), "June")
	require.NoError(t, err)
	deleted, err := finance.NewIncomeRecord(branch, may10, decimal.NewFromInt(999), "Mistake")
	require.NoError(t, err)
	for _, r := range []*finance.IncomeRecord{inMay, inJune, deleted} {
		require.NoError(t, ledger.CreateIncome(ctx, r))
	}
	deleted.SoftDelete(time.Now())
	require.NoError(t, ledger.SaveIncome(ctx, deleted))

	rent, err := finance.NewExpenseRecord(uuid.New(), may10, decimal.NewFromInt(750000), finance.ExpenseCategoryRent, "")
	require.NoError(t, err)
	require.NoError(t, ledger.CreateExpense(ctx, rent))

	f := mayFilter()
	incomes, err := facts.LoadIncomes(ctx, f)
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.Equal(t, inMay.ID, incomes[0].ID)
	assert.True(t, decimal.NewFromInt(200000).Equal(incomes[0].Amount))
	assert.True(t, may10.Equal(incomes[0].Date))

	expenses, err := facts.LoadExpenses(ctx, f)
	require.NoError(t, err)
	assert.Len(t, expenses, 1)

	f.BranchScope = &branch
	expenses, err = facts.LoadExpenses(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}
