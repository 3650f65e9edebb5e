package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Overview is the headline profit and debt figures for a range
type Overview struct {
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
	TotalCost              decimal.Decimal `json:"total_cost"`
	GrossProfit            decimal.Decimal `json:"gross_profit"`
	ProfitMargin           decimal.Decimal `json:"profit_margin"` // GrossProfit / TotalRevenue * 100
	OrderRevenue           decimal.Decimal `json:"order_revenue"`
	OrderCost              decimal.Decimal `json:"order_cost"`
	DirectIncome           decimal.Decimal `json:"direct_income"`
	DirectExpense          decimal.Decimal `json:"direct_expense"`
	OutstandingReceivables decimal.Decimal `json:"outstanding_receivables"`
	OutstandingPayables    decimal.Decimal `json:"outstanding_payables"`
	OrderCount             int64           `json:"order_count"`
	PaidOrderCount         int64           `json:"paid_order_count"`
}

// TrendRow is one bucket of the trend series
type TrendRow struct {
	Period      string          `json:"period"`
	PeriodLabel string          `json:"period_label"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
	Margin      decimal.Decimal `json:"margin"`
}

// Trends is the trend series with the granularity that was chosen
type Trends struct {
	Granularity Granularity `json:"granularity"`
	Rows        []TrendRow  `json:"rows"`
}

// CounterpartDebt is the outstanding amount tied to one supplier or technician
type CounterpartDebt struct {
	ID         uuid.UUID       `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	OrderCount int64           `json:"order_count"`
}

// DebtAnalysis breaks outstanding receivables and payables down
type DebtAnalysis struct {
	Receivables      decimal.Decimal   `json:"receivables"`
	Payables         decimal.Decimal   `json:"payables"`
	Net              decimal.Decimal   `json:"net"`
	ReceivableOrders int64             `json:"receivable_orders"`
	PayableOrders    int64             `json:"payable_orders"`
	BySupplier       []CounterpartDebt `json:"by_supplier"`
	ByTechnician     []CounterpartDebt `json:"by_technician"`
}

// CashFlowAnalysis is actual money movement plus the open position
type CashFlowAnalysis struct {
	DirectIncome       decimal.Decimal `json:"direct_income"`
	OrderReceipts      decimal.Decimal `json:"order_receipts"`
	CashIn             decimal.Decimal `json:"cash_in"`
	DirectExpense      decimal.Decimal `json:"direct_expense"`
	SupplierPayments   decimal.Decimal `json:"supplier_payments"`
	TechnicianPayments decimal.Decimal `json:"technician_payments"`
	CashOut            decimal.Decimal `json:"cash_out"`
	NetCashFlow        decimal.Decimal `json:"net_cash_flow"`
	Receivables        decimal.Decimal `json:"receivables"`
	Payables           decimal.Decimal `json:"payables"`
	NetPosition        decimal.Decimal `json:"net_position"`
}
