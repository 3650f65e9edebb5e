package partner

import (
	"context"
	"fmt"
	"slices"

	apptrade "github.com/erp/procurement/internal/application/trade"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/report"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Party types in reconciliation results
const (
	PartySupplier   = "supplier"
	PartyTechnician = "technician"
)

// BalanceAdjustment is one counterpart whose stored balance differed from its orders
type BalanceAdjustment struct {
	Party         string          `json:"party"`
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	TotalPOBefore decimal.Decimal `json:"total_po_before"`
	TotalPOAfter  decimal.Decimal `json:"total_po_after"`
	PiutangBefore decimal.Decimal `json:"piutang_before"`
	PiutangAfter  decimal.Decimal `json:"piutang_after"`
}

// ReconcileResult summarizes a reconciliation run
type ReconcileResult struct {
	SuppliersChecked   int                 `json:"suppliers_checked"`
	TechniciansChecked int                 `json:"technicians_checked"`
	Adjustments        []BalanceAdjustment `json:"adjustments"`
}

// ReconcileService recomputes TotalPO and Piutang of every counterpart from live orders
// and overwrites stored balances that drifted.
type ReconcileService struct {
	facts report.FactRepository
	scope apptrade.TransactionScope
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(facts report.FactRepository, scope apptrade.TransactionScope) *ReconcileService {
	return &ReconcileService{facts: facts, scope: scope}
}

// Supplier balances count orders from processing on; piutang is credit orders not yet done
var (
	supplierCounted = []trade.Status{trade.StatusProcessing, trade.StatusReceived, trade.StatusDone}
	supplierOpen    = []trade.Status{trade.StatusProcessing, trade.StatusReceived}

	technicianCounted = []trade.Status{trade.StatusApproved, trade.StatusInProgress, trade.StatusDone}
	technicianOpen    = []trade.Status{trade.StatusApproved, trade.StatusInProgress}
)

// Reconcile rewrites every drifted balance inside one transaction
func (s *ReconcileService) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	all := report.Filter{}
	supplierOrders, err := s.facts.LoadOrders(ctx, trade.KindSupplier, all)
	if err != nil {
		return nil, fmt.Errorf("load supplier orders: %w", err)
	}
	serviceOrders, err := s.facts.LoadOrders(ctx, trade.KindService, all)
	if err != nil {
		return nil, fmt.Errorf("load service orders: %w", err)
	}
	supplierWant := supplierBalances(supplierOrders)
	technicianWant := technicianBalances(serviceOrders)

	result := &ReconcileResult{Adjustments: []BalanceAdjustment{}}
	err = s.scope.Execute(ctx, func(repos apptrade.TransactionalRepositories) error {
		result.Adjustments = result.Adjustments[:0]

		suppliers, err := repos.Suppliers().FindAll(ctx)
		if err != nil {
			return err
		}
		result.SuppliersChecked = len(suppliers)
		for _, listed := range suppliers {
			sup, err := repos.Suppliers().FindByIDForUpdate(ctx, listed.ID)
			if err != nil {
				return err
			}
			adj, changed := reset(PartySupplier, sup.ID, sup.Code, &sup.CounterpartBalance, supplierWant[sup.ID])
			if !changed {
				continue
			}
			if err := repos.Suppliers().SaveBalance(ctx, sup); err != nil {
				return err
			}
			result.Adjustments = append(result.Adjustments, adj)
		}

		technicians, err := repos.Technicians().FindAll(ctx)
		if err != nil {
			return err
		}
		result.TechniciansChecked = len(technicians)
		for _, listed := range technicians {
			tech, err := repos.Technicians().FindByIDForUpdate(ctx, listed.ID)
			if err != nil {
				return err
			}
			adj, changed := reset(PartyTechnician, tech.ID, tech.Code, &tech.CounterpartBalance, technicianWant[tech.ID])
			if !changed {
				continue
			}
			if err := repos.Technicians().SaveBalance(ctx, tech); err != nil {
				return err
			}
			result.Adjustments = append(result.Adjustments, adj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	for _, adj := range result.Adjustments {
		log.Warn("counterpart balance corrected",
			zap.String("party", adj.Party),
			zap.String("code", adj.Code),
			zap.String("total_po_before", adj.TotalPOBefore.String()),
			zap.String("total_po_after", adj.TotalPOAfter.String()),
			zap.String("piutang_before", adj.PiutangBefore.String()),
			zap.String("piutang_after", adj.PiutangAfter.String()))
	}
	return result, nil
}

func reset(party string, id uuid.UUID, code string, b *partner.CounterpartBalance, want partner.CounterpartBalance) (BalanceAdjustment, bool) {
	want = normalized(want)
	if b.TotalPO.Equal(want.TotalPO) && b.Piutang.Equal(want.Piutang) {
		return BalanceAdjustment{}, false
	}
	adj := BalanceAdjustment{
		Party:         party,
		ID:            id,
		Code:          code,
		TotalPOBefore: b.TotalPO,
		PiutangBefore: b.Piutang,
	}
	b.Reset(want.TotalPO, want.Piutang)
	adj.TotalPOAfter = b.TotalPO
	adj.PiutangAfter = b.Piutang
	return adj, true
}

func normalized(b partner.CounterpartBalance) partner.CounterpartBalance {
	if b.TotalPO.IsZero() {
		b.TotalPO = decimal.Zero
	}
	if b.Piutang.IsZero() {
		b.Piutang = decimal.Zero
	}
	return b
}

func supplierBalances(orders []report.OrderFact) map[uuid.UUID]partner.CounterpartBalance {
	out := make(map[uuid.UUID]partner.CounterpartBalance)
	for _, o := range orders {
		if o.SupplierID == nil || !slices.Contains(supplierCounted, o.Status) {
			continue
		}
		b := out[*o.SupplierID]
		total := o.Total()
		b.TotalPO = b.TotalPO.Add(total)
		if o.PaymentType == trade.PaymentTypeCredit && slices.Contains(supplierOpen, o.Status) {
			b.Piutang = b.Piutang.Add(total)
		}
		out[*o.SupplierID] = b
	}
	return out
}

func technicianBalances(orders []report.OrderFact) map[uuid.UUID]partner.CounterpartBalance {
	out := make(map[uuid.UUID]partner.CounterpartBalance)
	for _, o := range orders {
		if !slices.Contains(technicianCounted, o.Status) {
			continue
		}
		open := o.PaymentType == trade.PaymentTypeCredit && slices.Contains(technicianOpen, o.Status)
		for _, l := range o.Lines {
			if l.TechnicianID == nil {
				continue
			}
			b := out[*l.TechnicianID]
			cost := l.Cost()
			b.TotalPO = b.TotalPO.Add(cost)
			if open {
				b.Piutang = b.Piutang.Add(cost)
			}
			out[*l.TechnicianID] = b
		}
	}
	return out
}
