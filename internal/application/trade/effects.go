package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/strategy"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// refusal aborts the transaction and is reported as violations instead of an error
type refusal struct {
	violations []shared.Violation
}

func (r *refusal) Error() string {
	return fmt.Sprintf("transition refused with %d violation(s)", len(r.violations))
}

// effectRunner carries out the effects returned by Order.Apply inside the open transaction
type effectRunner struct {
	repos      TransactionalRepositories
	costing    strategy.CostCalculationStrategy
	numberOpts []numbering.Option
	now        time.Time
}

func (e *effectRunner) run(ctx context.Context, order trade.Order, effects []trade.Effect) error {
	for _, effect := range effects {
		var err error
		switch fx := effect.(type) {
		case trade.CostLines:
			err = e.costLines(ctx, order, fx)
		case trade.DeductStock:
			err = e.deductStock(ctx, fx)
		case trade.ReceiveBatch:
			err = e.receiveBatch(ctx, fx)
		case trade.AdjustBalance:
			err = e.adjustBalance(ctx, fx)
		default:
			err = fmt.Errorf("unhandled effect %T", effect)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// costLines prices each line from the batch ledger and stores cost and profit
func (e *effectRunner) costLines(ctx context.Context, order trade.Order, fx trade.CostLines) error {
	pp, ok := order.(*trade.ProductPurchase)
	if !ok {
		return fmt.Errorf("cost effect on %s order", order.Kind())
	}
	entries := make(map[uuid.UUID][]strategy.StockEntry)
	for _, req := range fx.Lines {
		if _, loaded := entries[req.ProductID]; !loaded {
			batches, err := e.repos.Batches().FindByProduct(ctx, req.ProductID)
			if err != nil {
				return fmt.Errorf("load batches for %s: %w", req.ProductID, err)
			}
			entries[req.ProductID] = inventory.ToStockEntries(batches)
		}
		result, err := e.costing.CalculateCost(ctx, strategy.CostContext{
			ProductID: req.ProductID.String(),
			Quantity:  req.Quantity,
			Date:      e.now,
		}, entries[req.ProductID])
		if err != nil {
			return fmt.Errorf("cost line %s: %w", req.LineID, err)
		}
		if err := pp.ApplyCost(req.LineID, result.UnitCost); err != nil {
			return err
		}
	}
	return nil
}

func (e *effectRunner) deductStock(ctx context.Context, fx trade.DeductStock) error {
	err := e.repos.Products().DeductStock(ctx, fx.ProductID, fx.Quantity)
	if !errors.Is(err, shared.ErrInsufficientStock) {
		return err
	}
	// Stock moved after the guard ran; report it the way the guard would.
	shortage := trade.StockShortage{
		ProductID:   fx.ProductID,
		ProductCode: fx.ProductCode,
		ProductName: fx.ProductName,
		Required:    fx.Quantity,
		Available:   decimal.Zero,
	}
	if p, findErr := e.repos.Products().FindByID(ctx, fx.ProductID); findErr == nil {
		shortage.Available = p.Stock
	} else if !errors.Is(findErr, shared.ErrNotFound) {
		return findErr
	}
	shortage.Shortage = shortage.Required.Sub(shortage.Available)
	return &refusal{violations: []shared.Violation{{
		Code:    trade.CodeInsufficientStock,
		Field:   "lines",
		Message: shortage.Message(),
		Data:    shortage,
	}}}
}

// receiveBatch numbers and stores one batch, then raises the product counter
func (e *effectRunner) receiveBatch(ctx context.Context, fx trade.ReceiveBatch) error {
	gen := numbering.NewGenerator(e.repos.BatchNumbers(), e.numberOpts...)
	poID := fx.SupplierPurchaseID
	_, err := gen.Assign(ctx, numbering.Request{
		Prefix: numbering.PrefixBatch,
		Scope:  numbering.BatchScope(fx.ProductCode, fx.SupplierCode),
		At:     fx.EntryDate,
	}, func(ctx context.Context, number string) error {
		batch, err := inventory.NewStockBatch(fx.ProductID, number, fx.Quantity, fx.UnitCost, fx.EntryDate, fx.ExpiryDate, &poID)
		if err != nil {
			return err
		}
		return e.repos.Batches().Create(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("create batch for %s: %w", fx.ProductCode, err)
	}
	return e.repos.Products().AddStock(ctx, fx.ProductID, fx.Quantity)
}

func (e *effectRunner) adjustBalance(ctx context.Context, fx trade.AdjustBalance) error {
	switch fx.Party {
	case trade.PartySupplier:
		s, err := e.repos.Suppliers().FindByIDForUpdate(ctx, fx.PartyID)
		if err != nil {
			return fmt.Errorf("load supplier %s: %w", fx.PartyID, err)
		}
		if err := applyBalanceOp(&s.CounterpartBalance, fx); err != nil {
			return err
		}
		return e.repos.Suppliers().SaveBalance(ctx, s)
	case trade.PartyTechnician:
		t, err := e.repos.Technicians().FindByIDForUpdate(ctx, fx.PartyID)
		if err != nil {
			return fmt.Errorf("load technician %s: %w", fx.PartyID, err)
		}
		if err := applyBalanceOp(&t.CounterpartBalance, fx); err != nil {
			return err
		}
		return e.repos.Technicians().SaveBalance(ctx, t)
	}
	return fmt.Errorf("unknown party %q", fx.Party)
}

func applyBalanceOp(b *partner.CounterpartBalance, fx trade.AdjustBalance) error {
	switch fx.Op {
	case trade.BalanceRecord:
		return b.RecordOrder(fx.Amount, fx.Credit)
	case trade.BalanceReverse:
		return b.ReverseOrder(fx.Amount, fx.Credit)
	case trade.BalanceSettle:
		return b.SettlePayable(fx.Amount)
	}
	return fmt.Errorf("unknown balance op %q", fx.Op)
}
