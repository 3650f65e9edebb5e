package report

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/report"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report names, also used as metric and span attributes
const (
	ReportOverview = "overview"
	ReportTrends   = "trends"
	ReportDebts    = "debts"
	ReportCashFlow = "cash_flow"
)

// Service answers report queries. Every call normalizes its filter, loads
// facts in parallel and hands them to a fresh Aggregator.
type Service struct {
	facts   report.FactRepository
	metrics *telemetry.ProcurementMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records report latency
func WithMetrics(m *telemetry.ProcurementMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now when defaulting the date range
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a report Service
func NewService(facts report.FactRepository, opts ...Option) *Service {
	s := &Service{
		facts:  facts,
		tracer: otel.Tracer("procurement/report"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview returns headline revenue, cost, profit and open balances
func (s *Service) Overview(ctx context.Context, filter report.Filter) (*report.Overview, error) {
	agg, err := s.aggregate(ctx, ReportOverview, filter, true)
	if err != nil {
		return nil, err
	}
	out := agg.Overview()
	return &out, nil
}

// Trends returns the bucketed revenue/cost/profit series
func (s *Service) Trends(ctx context.Context, filter report.Filter) (*report.Trends, error) {
	agg, err := s.aggregate(ctx, ReportTrends, filter, false)
	if err != nil {
		return nil, err
	}
	out := agg.Trends()
	return &out, nil
}

// DebtAnalysis returns receivables and payables grouped by counterpart
func (s *Service) DebtAnalysis(ctx context.Context, filter report.Filter) (*report.DebtAnalysis, error) {
	agg, err := s.aggregate(ctx, ReportDebts, filter, false)
	if err != nil {
		return nil, err
	}
	out := agg.DebtAnalysis()
	return &out, nil
}

// CashFlow returns money in and out plus the open position
func (s *Service) CashFlow(ctx context.Context, filter report.Filter) (*report.CashFlowAnalysis, error) {
	agg, err := s.aggregate(ctx, ReportCashFlow, filter, true)
	if err != nil {
		return nil, err
	}
	out := agg.CashFlow()
	return &out, nil
}

func (s *Service) aggregate(ctx context.Context, name string, filter report.Filter, withLedger bool) (*report.Aggregator, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "report."+name, trace.WithAttributes(attribute.String("report", name)))
	defer span.End()

	normalized, err := filter.Normalize(s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("report.date_from", normalized.DateFrom.Format(time.DateOnly)),
		attribute.String("report.date_until", normalized.DateUntil.Format(time.DateOnly)),
	)

	facts, err := s.load(ctx, normalized, withLedger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.FromContext(ctx).Error("report facts failed to load", zap.String("report", name), zap.Error(err))
		return nil, err
	}

	agg := report.NewAggregator(normalized, facts)
	s.metrics.RecordReport(ctx, name, time.Since(start))
	logger.FromContext(ctx).Debug("report built",
		zap.String("report", name),
		zap.Int("orders", len(facts.Orders)),
		zap.Duration("elapsed", time.Since(start)))
	return agg, nil
}

// load fetches every order kind and, when asked, both ledgers concurrently
func (s *Service) load(ctx context.Context, filter report.Filter, withLedger bool) (report.Facts, error) {
	kinds := trade.AllKinds()
	perKind := make([][]report.OrderFact, len(kinds))
	var facts report.Facts

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			orders, err := s.facts.LoadOrders(ctx, kind, filter)
			if err != nil {
				return fmt.Errorf("load %s orders: %w", kind, err)
			}
			perKind[i] = orders
			return nil
		})
	}
	if withLedger {
		g.Go(func() error {
			incomes, err := s.facts.LoadIncomes(ctx, filter)
			if err != nil {
				return fmt.Errorf("load incomes: %w", err)
			}
			facts.Incomes = incomes
			return nil
		})
		g.Go(func() error {
			expenses, err := s.facts.LoadExpenses(ctx, filter)
			if err != nil {
				return fmt.Errorf("load expenses: %w", err)
			}
			facts.Expenses = expenses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.Facts{}, err
	}

	for _, orders := range perKind {
		facts.Orders = append(facts.Orders, orders...)
	}
	return facts, nil
}
