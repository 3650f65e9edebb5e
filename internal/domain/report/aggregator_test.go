package report

import (
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func sale(kind trade.Kind, status trade.Status, paid trade.PaymentStatus, on time.Time, lines ...LineFact) OrderFact {
	return OrderFact{
		OrderID:       uuid.New(),
		Kind:          kind,
		BranchID:      branchA,
		OrderDate:     on,
		Status:        status,
		PaymentType:   trade.PaymentTypeCredit,
		PaymentStatus: paid,
		Lines:         lines,
	}
}

func line(total, unitCost, qty int64) LineFact {
	return LineFact{LineTotal: dec(total), UnitCost: dec(unitCost), Quantity: dec(qty)}
}

var branchA = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func marchFilter() Filter {
	return Filter{DateFrom: date(2025, 3, 1), DateUntil: date(2025, 3, 31)}
}

func TestOverview_PaidOnlyRule(t *testing.T) {
	on := date(2025, 3, 5)
	facts := Facts{
		Orders: []OrderFact{
			sale(trade.KindProduct, trade.StatusDone, trade.PaymentStatusPaid, on, line(10000, 1200, 5)),
			sale(trade.KindProduct, trade.StatusProcessing, trade.PaymentStatusUnpaid, on, line(4000, 500, 2)),
			sale(trade.KindProduct, trade.StatusDraft, trade.PaymentStatusPaid, on, line(9999, 1, 1)),
			sale(trade.KindService, trade.StatusCancelled, trade.PaymentStatusPaid, on, line(9999, 1, 1)),
			sale(trade.KindService, trade.StatusInProgress, trade.PaymentStatusPaid, on, line(3000, 1000, 2)),
			sale(trade.KindSupplier, trade.StatusReceived, trade.PaymentStatusPaid, on, line(1500, 300, 5)),
			sale(trade.KindSupplier, trade.StatusProcessing, trade.PaymentStatusUnpaid, on, line(700, 70, 10)),
		},
		Incomes:  []LedgerEntry{{BranchID: branchA, Date: on, Amount: dec(500)}},
		Expenses: []LedgerEntry{{BranchID: branchA, Date: on, Amount: dec(250)}},
	}

	ov := NewAggregator(marchFilter(), facts).Overview()

	assert.True(t, ov.OrderRevenue.Equal(dec(13000)), ov.OrderRevenue.String())
	assert.True(t, ov.OrderCost.Equal(dec(6000+2000+1500)), ov.OrderCost.String())
	assert.True(t, ov.TotalRevenue.Equal(dec(13500)))
	assert.True(t, ov.TotalCost.Equal(dec(9750)))
	assert.True(t, ov.GrossProfit.Equal(dec(3750)))
	assert.Equal(t, "27.78", ov.ProfitMargin.StringFixed(2))
	assert.True(t, ov.OutstandingReceivables.Equal(dec(4000)))
	assert.True(t, ov.OutstandingPayables.Equal(dec(700)))
	assert.Equal(t, int64(5), ov.OrderCount)
	assert.Equal(t, int64(3), ov.PaidOrderCount)
}

func TestOverview_ZeroRevenueHasZeroMargin(t *testing.T) {
	facts := Facts{Expenses: []LedgerEntry{{BranchID: branchA, Date: date(2025, 3, 2), Amount: dec(100)}}}
	ov := NewAggregator(marchFilter(), facts).Overview()
	assert.True(t, ov.ProfitMargin.IsZero())
	assert.True(t, ov.GrossProfit.Equal(dec(-100)))
}

func TestOverview_FiltersByRangeAndBranch(t *testing.T) {
	other := uuid.New()
	outOfRange := sale(trade.KindProduct, trade.StatusDone, trade.PaymentStatusPaid, date(2025, 4, 1), line(1000, 0, 1))
	otherBranch := sale(trade.KindProduct, trade.StatusDone, trade.PaymentStatusPaid, date(2025, 3, 3), line(2000, 0, 1))
	otherBranch.BranchID = other
	inScope := sale(trade.KindProduct, trade.StatusDone, trade.PaymentStatusPaid, date(2025, 3, 31), line(3000, 0, 1))

	f := marchFilter()
	f.BranchScope = &branchA
	ov := NewAggregator(f, Facts{Orders: []OrderFact{outOfRange, otherBranch, inScope}}).Overview()
	assert.True(t, ov.OrderRevenue.Equal(dec(3000)))
}

func TestOverview_LineFilters(t *testing.T) {
	prodA, prodB := uuid.New(), uuid.New()
	o := sale(trade.KindProduct, trade.StatusDone, trade.PaymentStatusPaid, date(2025, 3, 3),
		LineFact{LineTotal: dec(100), ProductID: &prodA},
		LineFact{LineTotal: dec(250), ProductID: &prodB},
	)
	svc := sale(trade.KindService, trade.StatusDone, trade.PaymentStatusPaid, date(2025, 3, 3), line(80, 0, 1))

	f := marchFilter()
	f.ProductID = &prodB
	ov := NewAggregator(f, Facts{Orders: []OrderFact{o, svc}}).Overview()
	assert.True(t, ov.OrderRevenue.Equal(dec(250)), ov.OrderRevenue.String())
}

func TestOverview_LineFiltersDropKindsWithoutTheDimension(t *testing.T) {
	techA, prod, category := uuid.New(), uuid.New(), uuid.New()
	on := date(2025, 3, 3)
	product := sale(trade.KindProduct, trade.StatusDone, trade.PaymentStatusPaid, on,
		LineFact{LineTotal: dec(100), ProductID: &prod, CategoryID: &category})
	service := sale(trade.KindService, trade.StatusDone, trade.PaymentStatusPaid, on,
		LineFact{LineTotal: dec(80), TechnicianID: &techA})
	facts := Facts{Orders: []OrderFact{product, service}}

	f := marchFilter()
	f.TechnicianID = &techA
	assert.True(t, NewAggregator(f, facts).Overview().OrderRevenue.Equal(dec(80)))

	f = marchFilter()
	f.CategoryID = &category
	assert.True(t, NewAggregator(f, facts).Overview().OrderRevenue.Equal(dec(100)))

	f = marchFilter()
	f.TechnicianID = &techA
	f.ProductID = &prod
	assert.True(t, NewAggregator(f, facts).Overview().OrderRevenue.IsZero())
}

func TestOverview_OutstandingOnly(t *testing.T) {
	on := date(2025, 3, 3)
	f := marchFilter()
	f.OutstandingOnly = true
	ov := NewAggregator(f, Facts{Orders: []OrderFact{
		sale(trade.KindProduct, trade.StatusDone, trade.PaymentStatusPaid, on, line(100, 0, 1)),
		sale(trade.KindProduct, trade.StatusShipped, trade.PaymentStatusUnpaid, on, line(40, 0, 1)),
	}}).Overview()
	assert.True(t, ov.OrderRevenue.IsZero())
	assert.True(t, ov.OutstandingReceivables.Equal(dec(40)))
}

func TestTrends_ZeroFilledBuckets(t *testing.T) {
	tests := []struct {
		name  string
		from  time.Time
		days  int
		gran  Granularity
		count int
	}{
		{"ten days is daily", date(2025, 3, 1), 9, GranularityDay, 10},
		{"two hundred days is weekly", date(2025, 1, 1), 200, GranularityWeek, 29},
		{"four hundred days is monthly", date(2024, 1, 1), 400, GranularityMonth, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Filter{DateFrom: tt.from, DateUntil: tt.from.AddDate(0, 0, tt.days)}
			trends := NewAggregator(f, Facts{}).Trends()
			assert.Equal(t, tt.gran, trends.Granularity)
			require.Len(t, trends.Rows, tt.count)
			for _, r := range trends.Rows {
				assert.True(t, r.Revenue.IsZero())
				assert.True(t, r.Cost.IsZero())
				assert.True(t, r.Margin.IsZero())
			}
		})
	}
}

func TestTrends_PlacesOrdersAndLedger(t *testing.T) {
	f := Filter{DateFrom: date(2025, 3, 1), DateUntil: date(2025, 3, 10)}
	facts := Facts{
		Orders: []OrderFact{
			sale(trade.KindProduct, trade.StatusDone, trade.PaymentStatusPaid, time.Date(2025, 3, 2, 15, 30, 0, 0, time.UTC), line(2000, 1200, 1)),
		},
		Incomes:  []LedgerEntry{{BranchID: branchA, Date: date(2025, 3, 10), Amount: dec(50)}},
		Expenses: []LedgerEntry{{BranchID: branchA, Date: date(2025, 3, 2), Amount: dec(300)}},
	}
	rows := NewAggregator(f, facts).Trends().Rows
	require.Len(t, rows, 10)

	assert.True(t, rows[1].Revenue.Equal(dec(2000)))
	assert.True(t, rows[1].Cost.Equal(dec(1500)))
	assert.True(t, rows[1].Profit.Equal(dec(500)))
	assert.Equal(t, "25.00", rows[1].Margin.StringFixed(2))
	assert.True(t, rows[9].Revenue.Equal(dec(50)))
	assert.True(t, rows[0].Revenue.IsZero())
}

func TestDebtAnalysis(t *testing.T) {
	on := date(2025, 3, 3)
	supA, supB := uuid.New(), uuid.New()
	tech := uuid.New()

	p1 := sale(trade.KindSupplier, trade.StatusProcessing, trade.PaymentStatusUnpaid, on, line(50000, 0, 1))
	p1.SupplierID = &supA
	p2 := sale(trade.KindSupplier, trade.StatusRequested, trade.PaymentStatusUnpaid, on, line(70000, 0, 1))
	p2.SupplierID = &supB
	cancelled := sale(trade.KindSupplier, trade.StatusCancelled, trade.PaymentStatusUnpaid, on, line(99, 0, 1))
	cancelled.SupplierID = &supA
	svc := sale(trade.KindService, trade.StatusApproved, trade.PaymentStatusUnpaid, on,
		LineFact{LineTotal: dec(300000), UnitCost: dec(100000), Quantity: dec(2), TechnicianID: &tech})

	da := NewAggregator(marchFilter(), Facts{Orders: []OrderFact{p1, p2, cancelled, svc}}).DebtAnalysis()

	assert.True(t, da.Receivables.Equal(dec(300000)))
	assert.True(t, da.Payables.Equal(dec(120000)))
	assert.True(t, da.Net.Equal(dec(180000)))
	assert.Equal(t, int64(1), da.ReceivableOrders)
	assert.Equal(t, int64(2), da.PayableOrders)
	require.Len(t, da.BySupplier, 2)
	assert.Equal(t, supB, da.BySupplier[0].ID)
	require.Len(t, da.ByTechnician, 1)
	assert.True(t, da.ByTechnician[0].Amount.Equal(dec(200000)))
}

func TestCashFlow(t *testing.T) {
	on := date(2025, 3, 3)
	facts := Facts{
		Orders: []OrderFact{
			sale(trade.KindProduct, trade.StatusDone, trade.PaymentStatusPaid, on, line(10000, 1200, 5)),
			sale(trade.KindService, trade.StatusDone, trade.PaymentStatusPaid, on, line(3000, 1000, 2)),
			sale(trade.KindSupplier, trade.StatusDone, trade.PaymentStatusPaid, on, line(1500, 300, 5)),
			sale(trade.KindProduct, trade.StatusShipped, trade.PaymentStatusUnpaid, on, line(800, 0, 1)),
			sale(trade.KindSupplier, trade.StatusProcessing, trade.PaymentStatusUnpaid, on, line(200, 0, 1)),
		},
		Incomes:  []LedgerEntry{{BranchID: branchA, Date: on, Amount: dec(500)}},
		Expenses: []LedgerEntry{{BranchID: branchA, Date: on, Amount: dec(250)}},
	}
	cf := NewAggregator(marchFilter(), facts).CashFlow()

	assert.True(t, cf.CashIn.Equal(dec(500+10000+3000)))
	assert.True(t, cf.CashOut.Equal(dec(250+1500+2000)))
	assert.True(t, cf.NetCashFlow.Equal(dec(9750)))
	assert.True(t, cf.Receivables.Equal(dec(800)))
	assert.True(t, cf.Payables.Equal(dec(200)))
	assert.True(t, cf.NetPosition.Equal(dec(10350)))
}
