package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// orderPrefixes maps each kind to its number series
var orderPrefixes = map[trade.Kind]string{
	trade.KindProduct:  numbering.PrefixProductPurchase,
	trade.KindService:  numbering.PrefixServicePurchase,
	trade.KindSupplier: numbering.PrefixSupplierPurchase,
}

// OrderService handles order creation and editing outside the lifecycle
type OrderService struct {
	orders      trade.OrderRepository
	products    inventory.ProductRepository
	suppliers   partner.SupplierRepository
	technicians partner.TechnicianRepository
	numbers     map[trade.Kind]*numbering.Generator
	proofs      ProofChecker
	now         func() time.Time
}

// NewOrderService creates a new OrderService. numbers needs a generator per kind.
func NewOrderService(
	orders trade.OrderRepository,
	products inventory.ProductRepository,
	suppliers partner.SupplierRepository,
	technicians partner.TechnicianRepository,
	numbers map[trade.Kind]*numbering.Generator,
) *OrderService {
	return &OrderService{
		orders:      orders,
		products:    products,
		suppliers:   suppliers,
		technicians: technicians,
		numbers:     numbers,
		now:         time.Now,
	}
}

// SetProofChecker enables verifying that payment proofs exist before marking paid
func (s *OrderService) SetProofChecker(checker ProofChecker) {
	s.proofs = checker
}

// Create opens an order with a freshly assigned number
func (s *OrderService) Create(ctx context.Context, kind trade.Kind, req CreateOrderRequest) (*OrderResponse, error) {
	gen, ok := s.numbers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown order kind %q", shared.ErrInvalidInput, kind)
	}

	orderDate := s.now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	// Supplier orders are numbered per supplier, the rest per branch.
	scope := req.BranchCode
	var supplier *partner.Supplier
	if kind == trade.KindSupplier {
		if req.SupplierID == nil {
			return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID is required for supplier orders")
		}
		var err error
		if supplier, err = s.suppliers.FindByID(ctx, *req.SupplierID); err != nil {
			return nil, err
		}
		scope = supplier.Code
	}

	var created trade.Order
	_, err := gen.Assign(ctx, numbering.Request{
		Prefix: orderPrefixes[kind],
		Scope:  scope,
		At:     orderDate,
	}, func(ctx context.Context, number string) error {
		in := trade.NewOrderHeaderInput{
			BranchID:     req.BranchID,
			OrderNumber:  number,
			Name:         req.Name,
			RequesterID:  req.RequesterID,
			OrderDate:    orderDate,
			ExpectedDate: req.ExpectedDate,
			PaymentType:  trade.PaymentType(req.PaymentType),
			Notes:        req.Notes,
		}
		order, err := s.build(ctx, kind, in, supplier, req.Lines)
		if err != nil {
			return err
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(created)
	return &resp, nil
}

func (s *OrderService) build(ctx context.Context, kind trade.Kind, in trade.NewOrderHeaderInput, supplier *partner.Supplier, lines []AddLineRequest) (trade.Order, error) {
	var (
		order trade.Order
		err   error
	)
	switch kind {
	case trade.KindProduct:
		order, err = trade.NewProductPurchase(in)
	case trade.KindService:
		order, err = trade.NewServicePurchase(in)
	case trade.KindSupplier:
		order, err = trade.NewSupplierPurchase(in, supplier.ID, supplier.Code)
	}
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := s.addLine(ctx, order, line); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// GetByID returns an order of the given kind
func (s *OrderService) GetByID(ctx context.Context, kind trade.Kind, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns a page of orders
func (s *OrderService) List(ctx context.Context, kind trade.Kind, req ListOrdersRequest) (shared.Paginated[OrderResponse], error) {
	if !kind.IsValid() {
		return shared.Paginated[OrderResponse]{}, fmt.Errorf("%w: unknown order kind %q", shared.ErrInvalidInput, kind)
	}
	filter := trade.OrderListFilter{
		Filter: shared.DefaultFilter(),
		From:   req.From,
		Until:  req.Until,
	}
	if req.BranchID != "" {
		branchID, err := uuid.Parse(req.BranchID)
		if err != nil {
			return shared.Paginated[OrderResponse]{}, fmt.Errorf("%w: invalid branch_id", shared.ErrInvalidInput)
		}
		filter.BranchID = &branchID
	}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	for _, st := range req.Status {
		status := trade.Status(st)
		if !status.IsValid() {
			return shared.Paginated[OrderResponse]{}, fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, st)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	orders, total, err := s.orders.List(ctx, kind, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	items := make([]OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = ToOrderResponse(o)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Update changes header fields
func (s *OrderService) Update(ctx context.Context, kind trade.Kind, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	return s.mutate(ctx, kind, id, func(order trade.Order) error {
		h := order.Header()
		if h.Status == trade.StatusCancelled || h.Status == trade.StatusDone {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit order in %s status", h.Status))
		}
		if req.ReceivedAt != nil {
			sp, ok := order.(*trade.SupplierPurchase)
			if !ok {
				return fmt.Errorf("%w: received_at only applies to supplier orders", shared.ErrInvalidInput)
			}
			if err := sp.SetReceivedAt(*req.ReceivedAt); err != nil {
				return err
			}
		}
		if req.Name != nil {
			h.Rename(*req.Name)
		}
		if req.ExpectedDate != nil {
			h.SetExpectedDate(req.ExpectedDate)
		}
		if req.Notes != nil {
			h.SetNotes(*req.Notes)
		}
		return nil
	})
}

// AddLine appends a line to an editable order
func (s *OrderService) AddLine(ctx context.Context, kind trade.Kind, id uuid.UUID, req AddLineRequest) (*OrderResponse, error) {
	return s.mutate(ctx, kind, id, func(order trade.Order) error {
		return s.addLine(ctx, order, req)
	})
}

func (s *OrderService) addLine(ctx context.Context, order trade.Order, req AddLineRequest) error {
	switch o := order.(type) {
	case *trade.ProductPurchase:
		p, err := s.products.FindByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		_, err = o.AddLine(p.ID, p.Code, p.Name, req.Quantity, req.Price)
		return err
	case *trade.ServicePurchase:
		if req.ItemName == "" {
			return shared.NewDomainError("INVALID_SERVICE", "Service name is required")
		}
		_, err := o.AddLine(req.ItemID, req.ItemName, req.Quantity, req.Price)
		return err
	case *trade.SupplierPurchase:
		p, err := s.products.FindByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		_, err = o.AddLine(p.ID, p.Code, p.Name, req.Quantity, req.Price, req.ExpiryDate)
		return err
	}
	return fmt.Errorf("%w: unsupported order type %T", shared.ErrInvalidInput, order)
}

// UpdateLine changes quantity and price of a line
func (s *OrderService) UpdateLine(ctx context.Context, kind trade.Kind, id, lineID uuid.UUID, req UpdateLineRequest) (*OrderResponse, error) {
	return s.mutate(ctx, kind, id, func(order trade.Order) error {
		editor, ok := order.(lineEditor)
		if !ok {
			return fmt.Errorf("%w: unsupported order type %T", shared.ErrInvalidInput, order)
		}
		return editor.UpdateLine(lineID, req.Quantity, req.Price)
	})
}

// RemoveLine soft deletes a line
func (s *OrderService) RemoveLine(ctx context.Context, kind trade.Kind, id, lineID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, kind, id, func(order trade.Order) error {
		editor, ok := order.(lineEditor)
		if !ok {
			return fmt.Errorf("%w: unsupported order type %T", shared.ErrInvalidInput, order)
		}
		return editor.RemoveLine(lineID)
	})
}

// AssignTechnician sets a service line's technician and captures their fee
func (s *OrderService) AssignTechnician(ctx context.Context, id, lineID uuid.UUID, req AssignTechnicianRequest) (*OrderResponse, error) {
	tech, err := s.technicians.FindByID(ctx, req.TechnicianID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, trade.KindService, id, func(order trade.Order) error {
		sp, ok := order.(*trade.ServicePurchase)
		if !ok {
			return fmt.Errorf("%w: technicians can only be assigned on service orders", shared.ErrInvalidInput)
		}
		return sp.AssignTechnician(lineID, tech.ID, tech.ServiceFee)
	})
}

// MarkPaid records payment with its proof artifact
func (s *OrderService) MarkPaid(ctx context.Context, kind trade.Kind, id uuid.UUID, req MarkPaidRequest) (*OrderResponse, error) {
	if s.proofs != nil {
		exists, err := s.proofs.Exists(ctx, req.PaymentProof)
		if err != nil {
			return nil, fmt.Errorf("check payment proof: %w", err)
		}
		if !exists {
			return nil, shared.NewDomainError("INVALID_PAYMENT_PROOF", "Payment proof artifact not found")
		}
	}
	return s.mutate(ctx, kind, id, func(order trade.Order) error {
		return order.Header().MarkPaid(req.PaymentProof)
	})
}

// Delete soft deletes an order that never left its initial status
func (s *OrderService) Delete(ctx context.Context, kind trade.Kind, id uuid.UUID) error {
	_, err := s.mutate(ctx, kind, id, func(order trade.Order) error {
		return order.Header().SoftDelete(trade.MustLifecycle(kind).Initial(), s.now())
	})
	return err
}

// mutate loads, edits and saves an order with its version check
func (s *OrderService) mutate(ctx context.Context, kind trade.Kind, id uuid.UUID, fn func(trade.Order) error) (*OrderResponse, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown order kind %q", shared.ErrInvalidInput, kind)
	}
	order, err := s.orders.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// lineEditor is implemented by every order kind
type lineEditor interface {
	UpdateLine(lineID uuid.UUID, quantity, price decimal.Decimal) error
	RemoveLine(lineID uuid.UUID) error
}
