package report

import (
	"sort"
	"time"

	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregator derives every report from raw facts. It does no I/O.
type Aggregator struct {
	filter   Filter
	orders   []OrderFact
	incomes  []LedgerEntry
	expenses []LedgerEntry
}

// NewAggregator applies filter to facts once. The filter should already be normalized.
func NewAggregator(filter Filter, facts Facts) *Aggregator {
	a := &Aggregator{filter: filter}
	for _, o := range facts.Orders {
		if !filter.matchesOrder(o) {
			continue
		}
		if filter.hasLineFilter() {
			lines := make([]LineFact, 0, len(o.Lines))
			for _, l := range o.Lines {
				if filter.matchesLine(o.Kind, l) {
					lines = append(lines, l)
				}
			}
			if len(lines) == 0 {
				continue
			}
			o.Lines = lines
		}
		a.orders = append(a.orders, o)
	}
	for _, e := range facts.Incomes {
		if filter.matchesEntry(e) {
			a.incomes = append(a.incomes, e)
		}
	}
	for _, e := range facts.Expenses {
		if filter.matchesEntry(e) {
			a.expenses = append(a.expenses, e)
		}
	}
	return a
}

// orderRevenue is the selling value a paid sale contributes
func orderRevenue(o OrderFact) decimal.Decimal {
	if !o.Status.CountsTowardReports() || !o.isPaid() || !o.isSale() {
		return decimal.Zero
	}
	return o.Total()
}

// orderCost is line cost for paid sales and the order total for paid supplier purchases
func orderCost(o OrderFact) decimal.Decimal {
	if !o.Status.CountsTowardReports() || !o.isPaid() {
		return decimal.Zero
	}
	if o.Kind == trade.KindSupplier {
		return o.Total()
	}
	return o.LineCost()
}

func isReceivable(o OrderFact) bool {
	return o.isSale() && !o.isPaid() && o.Status.CountsTowardReports()
}

func isPayable(o OrderFact) bool {
	return o.Kind == trade.KindSupplier && !o.isPaid() && o.Status != trade.StatusCancelled
}

// Margin is profit over revenue as a percentage, zero when revenue is zero
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred).Round(2)
}

func sumEntries(entries []LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// Overview computes revenue, cost, profit and outstanding debt
func (a *Aggregator) Overview() Overview {
	ov := Overview{
		OrderRevenue:           decimal.Zero,
		OrderCost:              decimal.Zero,
		OutstandingReceivables: decimal.Zero,
		OutstandingPayables:    decimal.Zero,
		DirectIncome:           sumEntries(a.incomes),
		DirectExpense:          sumEntries(a.expenses),
	}
	for _, o := range a.orders {
		ov.OrderRevenue = ov.OrderRevenue.Add(orderRevenue(o))
		ov.OrderCost = ov.OrderCost.Add(orderCost(o))
		if isReceivable(o) {
			ov.OutstandingReceivables = ov.OutstandingReceivables.Add(o.Total())
		}
		if isPayable(o) {
			ov.OutstandingPayables = ov.OutstandingPayables.Add(o.Total())
		}
		if o.Status.CountsTowardReports() {
			ov.OrderCount++
			if o.isPaid() {
				ov.PaidOrderCount++
			}
		}
	}
	ov.TotalRevenue = ov.DirectIncome.Add(ov.OrderRevenue)
	ov.TotalCost = ov.DirectExpense.Add(ov.OrderCost)
	ov.GrossProfit = ov.TotalRevenue.Sub(ov.TotalCost)
	ov.ProfitMargin = Margin(ov.GrossProfit, ov.TotalRevenue)
	return ov
}

// Trends buckets revenue and cost over the filter range, one row per bucket
func (a *Aggregator) Trends() Trends {
	g := GranularityFor(a.filter.Days())
	if a.filter.DateFrom.IsZero() {
		return Trends{Granularity: g, Rows: []TrendRow{}}
	}
	buckets := Buckets(a.filter.DateFrom, a.filter.DateUntil, g)
	revenue := make([]decimal.Decimal, len(buckets))
	cost := make([]decimal.Decimal, len(buckets))
	for i := range buckets {
		revenue[i] = decimal.Zero
		cost[i] = decimal.Zero
	}

	loc := a.filter.DateFrom.Location()
	find := func(t time.Time) int {
		t = t.In(loc)
		i := sort.Search(len(buckets), func(i int) bool { return buckets[i].End.After(t) })
		if i < len(buckets) && buckets[i].Contains(t) {
			return i
		}
		return -1
	}

	for _, o := range a.orders {
		if i := find(o.OrderDate); i >= 0 {
			revenue[i] = revenue[i].Add(orderRevenue(o))
			cost[i] = cost[i].Add(orderCost(o))
		}
	}
	for _, e := range a.incomes {
		if i := find(e.Date); i >= 0 {
			revenue[i] = revenue[i].Add(e.Amount)
		}
	}
	for _, e := range a.expenses {
		if i := find(e.Date); i >= 0 {
			cost[i] = cost[i].Add(e.Amount)
		}
	}

	rows := make([]TrendRow, len(buckets))
	for i, b := range buckets {
		profit := revenue[i].Sub(cost[i])
		rows[i] = TrendRow{
			Period:      b.Key,
			PeriodLabel: b.Label,
			Revenue:     revenue[i],
			Cost:        cost[i],
			Profit:      profit,
			Margin:      Margin(profit, revenue[i]),
		}
	}
	return Trends{Granularity: g, Rows: rows}
}

// DebtAnalysis groups open receivables and payables by counterpart
func (a *Aggregator) DebtAnalysis() DebtAnalysis {
	da := DebtAnalysis{Receivables: decimal.Zero, Payables: decimal.Zero}
	suppliers := newDebtTally()
	technicians := newDebtTally()

	for _, o := range a.orders {
		if isReceivable(o) {
			da.Receivables = da.Receivables.Add(o.Total())
			da.ReceivableOrders++
			if o.Kind == trade.KindService {
				for _, l := range o.Lines {
					if l.TechnicianID != nil {
						technicians.add(*l.TechnicianID, o.OrderID, l.Cost())
					}
				}
			}
		}
		if isPayable(o) {
			da.Payables = da.Payables.Add(o.Total())
			da.PayableOrders++
			if o.SupplierID != nil {
				suppliers.add(*o.SupplierID, o.OrderID, o.Total())
			}
		}
	}
	da.Net = da.Receivables.Sub(da.Payables)
	da.BySupplier = suppliers.rows()
	da.ByTechnician = technicians.rows()
	return da
}

// CashFlow splits paid money in and out and adds the open position
func (a *Aggregator) CashFlow() CashFlowAnalysis {
	cf := CashFlowAnalysis{
		DirectIncome:       sumEntries(a.incomes),
		DirectExpense:      sumEntries(a.expenses),
		OrderReceipts:      decimal.Zero,
		SupplierPayments:   decimal.Zero,
		TechnicianPayments: decimal.Zero,
		Receivables:        decimal.Zero,
		Payables:           decimal.Zero,
	}
	for _, o := range a.orders {
		if isReceivable(o) {
			cf.Receivables = cf.Receivables.Add(o.Total())
		}
		if isPayable(o) {
			cf.Payables = cf.Payables.Add(o.Total())
		}
		if !o.isPaid() || !o.Status.CountsTowardReports() {
			continue
		}
		switch o.Kind {
		case trade.KindSupplier:
			cf.SupplierPayments = cf.SupplierPayments.Add(o.Total())
		case trade.KindService:
			cf.OrderReceipts = cf.OrderReceipts.Add(o.Total())
			cf.TechnicianPayments = cf.TechnicianPayments.Add(o.LineCost())
		default:
			cf.OrderReceipts = cf.OrderReceipts.Add(o.Total())
		}
	}
	cf.CashIn = cf.DirectIncome.Add(cf.OrderReceipts)
	cf.CashOut = cf.DirectExpense.Add(cf.SupplierPayments).Add(cf.TechnicianPayments)
	cf.NetCashFlow = cf.CashIn.Sub(cf.CashOut)
	cf.NetPosition = cf.NetCashFlow.Add(cf.Receivables.Sub(cf.Payables))
	return cf
}

type debtTally struct {
	amounts map[uuid.UUID]decimal.Decimal
	orders  map[uuid.UUID]map[uuid.UUID]struct{}
}

func newDebtTally() *debtTally {
	return &debtTally{
		amounts: make(map[uuid.UUID]decimal.Decimal),
		orders:  make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

func (t *debtTally) add(id, orderID uuid.UUID, amount decimal.Decimal) {
	t.amounts[id] = t.amounts[id].Add(amount)
	if t.orders[id] == nil {
		t.orders[id] = make(map[uuid.UUID]struct{})
	}
	t.orders[id][orderID] = struct{}{}
}

// rows sorts by amount descending, then by ID for a stable order
func (t *debtTally) rows() []CounterpartDebt {
	out := make([]CounterpartDebt, 0, len(t.amounts))
	for id, amount := range t.amounts {
		out = append(out, CounterpartDebt{ID: id, Amount: amount, OrderCount: int64(len(t.orders[id]))})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
