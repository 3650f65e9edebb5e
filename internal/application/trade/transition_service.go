package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/strategy"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TransitionService executes lifecycle transitions: lock, load for update, guard,
// apply, run effects, save with version check, commit, then publish.
type TransitionService struct {
	scope      TransactionScope
	locker     Locker
	costing    CostStrategies
	costMethod string
	publisher  shared.EventPublisher
	metrics    *telemetry.ProcurementMetrics
	tracer     trace.Tracer
	numberOpts []numbering.Option
	now        func() time.Time
}

// TransitionOption configures a TransitionService
type TransitionOption func(*TransitionService)

// WithCostMethod selects the cost strategy by name; empty uses the registry default
func WithCostMethod(name string) TransitionOption {
	return func(s *TransitionService) { s.costMethod = name }
}

// WithEventPublisher publishes status change events after commit
func WithEventPublisher(p shared.EventPublisher) TransitionOption {
	return func(s *TransitionService) { s.publisher = p }
}

// WithMetrics records transition outcomes
func WithMetrics(m *telemetry.ProcurementMetrics) TransitionOption {
	return func(s *TransitionService) { s.metrics = m }
}

// WithNumberingOptions tunes batch number generation
func WithNumberingOptions(opts ...numbering.Option) TransitionOption {
	return func(s *TransitionService) { s.numberOpts = append(s.numberOpts, opts...) }
}

// WithTransitionClock replaces time.Now
func WithTransitionClock(now func() time.Time) TransitionOption {
	return func(s *TransitionService) { s.now = now }
}

// NewTransitionService creates a TransitionService
func NewTransitionService(scope TransactionScope, locker Locker, costing CostStrategies, opts ...TransitionOption) *TransitionService {
	s := &TransitionService{
		scope:   scope,
		locker:  locker,
		costing: costing,
		tracer:  otel.Tracer("procurement/trade"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit executes transition t on an order. Guard failures come back as an
// unsuccessful result with a nil error; an illegal edge is an error.
func (s *TransitionService) Submit(ctx context.Context, kind trade.Kind, orderID uuid.UUID, t trade.Transition) (*TransitionResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "order.transition", trace.WithAttributes(
		attribute.String("order.kind", kind.String()),
		attribute.String("order.id", orderID.String()),
		attribute.String("order.transition", t.String()),
	))
	defer span.End()
	ctx, log := logger.WithOrder(ctx, kind.String(), orderID.String())

	result, events, err := s.submit(ctx, kind, orderID, t)
	outcome := outcomeOf(result, err)
	s.metrics.RecordTransition(ctx, kind.String(), t.String(), outcome, time.Since(start))
	span.SetAttributes(attribute.String("order.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("transition failed", zap.String("transition", t.String()), zap.Error(err))
		return nil, err
	}
	if !result.Success {
		log.Info("transition refused",
			zap.String("transition", t.String()),
			zap.Int("violations", len(result.Violations)))
		return result, nil
	}

	log.Info("transition applied", zap.String("transition", t.String()), zap.String("status", result.Status.String()))
	s.publish(ctx, log, events)
	return result, nil
}

func (s *TransitionService) submit(ctx context.Context, kind trade.Kind, orderID uuid.UUID, t trade.Transition) (*TransitionResult, []shared.DomainEvent, error) {
	if err := validateCommand(kind, t); err != nil {
		return nil, nil, err
	}

	release, err := s.locker.Obtain(ctx, lockKey(kind, orderID))
	if err != nil {
		return nil, nil, err
	}
	defer release()

	var (
		result *TransitionResult
		events []shared.DomainEvent
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, kind, orderID)
		if err != nil {
			return err
		}
		h := order.Header()
		if _, err := trade.MustLifecycle(kind).Target(h.Status, t); err != nil {
			return err
		}

		env, err := guardContext(ctx, repos, order, t)
		if err != nil {
			return err
		}
		if vr := order.Guard(t, env); !vr.OK() {
			result = refused(h.Status, vr.Violations())
			return nil
		}

		now := s.now()
		effects, err := order.Apply(t, now)
		if err != nil {
			return err
		}
		costing, err := s.costStrategy(effects)
		if err != nil {
			return err
		}
		runner := &effectRunner{repos: repos, costing: costing, numberOpts: s.numberOpts, now: now}
		if err := runner.run(ctx, order, effects); err != nil {
			return err
		}

		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		events = order.GetDomainEvents()
		order.ClearDomainEvents()
		result = applied(h.Status)
		return nil
	})

	var ref *refusal
	if errors.As(err, &ref) {
		status, serr := s.currentStatus(ctx, kind, orderID)
		if serr != nil {
			return nil, nil, serr
		}
		return refused(status, ref.violations), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return result, events, nil
}

// Preview evaluates the guard of t without changing anything
func (s *TransitionService) Preview(ctx context.Context, kind trade.Kind, orderID uuid.UUID, t trade.Transition) (*TransitionResult, error) {
	if err := validateCommand(kind, t); err != nil {
		return nil, err
	}
	var result *TransitionResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, kind, orderID)
		if err != nil {
			return err
		}
		h := order.Header()
		if _, err := trade.MustLifecycle(kind).Target(h.Status, t); err != nil {
			return err
		}
		env, err := guardContext(ctx, repos, order, t)
		if err != nil {
			return err
		}
		vr := order.Guard(t, env)
		if !vr.OK() {
			result = refused(h.Status, vr.Violations())
			return nil
		}
		result = &TransitionResult{Success: true, Status: h.Status, Violations: []shared.Violation{}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// costStrategy resolves the strategy only when a costing effect is present
func (s *TransitionService) costStrategy(effects []trade.Effect) (strategy.CostCalculationStrategy, error) {
	for _, fx := range effects {
		if _, ok := fx.(trade.CostLines); ok {
			return s.costing.GetCostStrategy(s.costMethod)
		}
	}
	return nil, nil
}

func (s *TransitionService) currentStatus(ctx context.Context, kind trade.Kind, orderID uuid.UUID) (trade.Status, error) {
	var status trade.Status
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, kind, orderID)
		if err != nil {
			return err
		}
		status = order.Header().Status
		return nil
	})
	return status, err
}

func (s *TransitionService) publish(ctx context.Context, log *zap.Logger, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		log.Error("publish status change failed", zap.Error(err))
	}
}

// guardContext gathers the outside facts a guard needs: stock levels for product process and ship
func guardContext(ctx context.Context, repos TransactionalRepositories, order trade.Order, t trade.Transition) (trade.GuardContext, error) {
	pp, ok := order.(*trade.ProductPurchase)
	if !ok || (t != trade.TransitionProcess && t != trade.TransitionShip) {
		return trade.GuardContext{}, nil
	}
	levels, err := repos.Products().StockLevels(ctx, pp.ProductIDs())
	if err != nil {
		return trade.GuardContext{}, fmt.Errorf("load stock levels: %w", err)
	}
	return trade.GuardContext{Stock: levels}, nil
}

func validateCommand(kind trade.Kind, t trade.Transition) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown order kind %q", shared.ErrInvalidInput, kind)
	}
	if !t.IsValid() {
		return fmt.Errorf("%w: unknown transition %q", shared.ErrInvalidInput, t)
	}
	return nil
}

func lockKey(kind trade.Kind, id uuid.UUID) string {
	return "order:" + kind.String() + ":" + id.String()
}

func outcomeOf(result *TransitionResult, err error) string {
	switch {
	case errors.Is(err, trade.ErrIllegalTransition):
		return telemetry.OutcomeIllegal
	case errors.Is(err, shared.ErrConcurrencyConflict), errors.Is(err, shared.ErrLockNotObtained):
		return telemetry.OutcomeConflict
	case err != nil:
		return telemetry.OutcomeError
	case !result.Success:
		return telemetry.OutcomeRefused
	}
	return telemetry.OutcomeApplied
}
