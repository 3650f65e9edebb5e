package trade

import (
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Order DTOs ====================

// CreateOrderRequest opens an order of any kind. SupplierID is required for supplier orders only.
type CreateOrderRequest struct {
	BranchID     uuid.UUID        `json:"branch_id" binding:"required"`
	BranchCode   string           `json:"branch_code" binding:"required,min=1,max=20"`
	Name         string           `json:"name" binding:"max=200"`
	RequesterID  uuid.UUID        `json:"requester_id" binding:"required"`
	OrderDate    *time.Time       `json:"order_date"`
	ExpectedDate *time.Time       `json:"expected_date"`
	PaymentType  string           `json:"payment_type" binding:"omitempty,oneof=cash credit"`
	Notes        string           `json:"notes"`
	SupplierID   *uuid.UUID       `json:"supplier_id"`
	Lines        []AddLineRequest `json:"lines" binding:"dive"`
}

// UpdateOrderRequest changes header fields. Nil fields are left alone.
// ReceivedAt applies to supplier orders that have not been received yet.
type UpdateOrderRequest struct {
	Name         *string    `json:"name" binding:"omitempty,max=200"`
	ExpectedDate *time.Time `json:"expected_date"`
	Notes        *string    `json:"notes"`
	ReceivedAt   *time.Time `json:"received_at"`
}

// AddLineRequest adds a line. ItemID is a product for product and supplier
// orders and a service for service orders. Price is the unit price for sales
// and the unit cost for supplier orders.
type AddLineRequest struct {
	ItemID     uuid.UUID       `json:"item_id" binding:"required"`
	ItemName   string          `json:"item_name" binding:"max=200"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Price      decimal.Decimal `json:"price"`
	ExpiryDate *time.Time      `json:"expiry_date"`
}

// UpdateLineRequest changes quantity and price of a line
type UpdateLineRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price"`
}

// AssignTechnicianRequest assigns a technician to a service line
type AssignTechnicianRequest struct {
	TechnicianID uuid.UUID `json:"technician_id" binding:"required"`
}

// MarkPaidRequest records payment with its proof artifact reference
type MarkPaidRequest struct {
	PaymentProof string `json:"payment_proof" binding:"required,max=500"`
}

// ListOrdersRequest filters order listings
type ListOrdersRequest struct {
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string     `form:"search"`
	BranchID string     `form:"branch_id" binding:"omitempty,uuid"`
	Status   []string   `form:"status"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	Until    *time.Time `form:"until" time_format:"2006-01-02"`
}

// LineResponse is one order line of any kind
type LineResponse struct {
	ID           uuid.UUID       `json:"id"`
	ItemID       uuid.UUID       `json:"item_id"`
	ItemCode     string          `json:"item_code,omitempty"`
	ItemName     string          `json:"item_name"`
	TechnicianID *uuid.UUID      `json:"technician_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LineTotal    decimal.Decimal `json:"line_total"`
	ProfitAmount decimal.Decimal `json:"profit_amount"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// OrderResponse is an order with its live lines
type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	Kind               trade.Kind          `json:"kind"`
	BranchID           uuid.UUID           `json:"branch_id"`
	OrderNumber        string              `json:"order_number"`
	Name               string              `json:"name"`
	RequesterID        uuid.UUID           `json:"requester_id"`
	OrderDate          time.Time           `json:"order_date"`
	ExpectedDate       *time.Time          `json:"expected_date,omitempty"`
	Status             trade.Status        `json:"status"`
	PaymentType        trade.PaymentType   `json:"payment_type"`
	PaymentStatus      trade.PaymentStatus `json:"payment_status"`
	PaymentProof       string              `json:"payment_proof,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	SupplierID         *uuid.UUID          `json:"supplier_id,omitempty"`
	ReceivedAt         *time.Time          `json:"received_at,omitempty"`
	AllowedTransitions []trade.Transition  `json:"allowed_transitions"`
	Lines              []LineResponse      `json:"lines"`
	Version            int                 `json:"version"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// ToOrderResponse converts any order kind to its response
func ToOrderResponse(order trade.Order) OrderResponse {
	h := order.Header()
	resp := OrderResponse{
		ID:                 h.ID,
		Kind:               order.Kind(),
		BranchID:           h.BranchID,
		OrderNumber:        h.OrderNumber,
		Name:               h.Name,
		RequesterID:        h.RequesterID,
		OrderDate:          h.OrderDate,
		ExpectedDate:       h.ExpectedDate,
		Status:             h.Status,
		PaymentType:        h.PaymentType,
		PaymentStatus:      h.PaymentStatus,
		PaymentProof:       h.PaymentProof,
		Notes:              h.Notes,
		TotalAmount:        h.TotalAmount,
		AllowedTransitions: trade.MustLifecycle(order.Kind()).Allowed(h.Status),
		Lines:              make([]LineResponse, 0),
		Version:            h.Version,
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
	}

	switch o := order.(type) {
	case *trade.ProductPurchase:
		for _, l := range o.ActiveLines() {
			resp.Lines = append(resp.Lines, LineResponse{
				ID: l.ID, ItemID: l.ProductID, ItemCode: l.ProductCode, ItemName: l.ProductName,
				Quantity: l.Quantity, UnitPrice: l.UnitPrice, UnitCost: l.UnitCost, LineTotal: l.LineTotal,
				ProfitAmount: l.ProfitAmount, ProfitMargin: l.ProfitMargin,
			})
		}
	case *trade.ServicePurchase:
		for _, l := range o.ActiveLines() {
			resp.Lines = append(resp.Lines, LineResponse{
				ID: l.ID, ItemID: l.ServiceID, ItemName: l.ServiceName, TechnicianID: l.TechnicianID,
				Quantity: l.Quantity, UnitPrice: l.UnitPrice, UnitCost: l.UnitCost, LineTotal: l.LineTotal,
				ProfitAmount: l.ProfitAmount, ProfitMargin: l.ProfitMargin,
			})
		}
	case *trade.SupplierPurchase:
		supplierID := o.SupplierID
		resp.SupplierID = &supplierID
		resp.ReceivedAt = o.ReceivedAt
		for _, l := range o.ActiveLines() {
			resp.Lines = append(resp.Lines, LineResponse{
				ID: l.ID, ItemID: l.ProductID, ItemCode: l.ProductCode, ItemName: l.ProductName,
				Quantity: l.Quantity, UnitCost: l.UnitCost, LineTotal: l.LineTotal, ExpiryDate: l.ExpiryDate,
			})
		}
	}
	return resp
}

// ==================== Transition DTOs ====================

// TransitionResult is the outcome of a transition command or preview.
// A refused transition is a normal result, not an error.
type TransitionResult struct {
	Success    bool               `json:"success"`
	Status     trade.Status       `json:"status"`
	Violations []shared.Violation `json:"validation_errors"`
}

func refused(status trade.Status, violations []shared.Violation) *TransitionResult {
	return &TransitionResult{Success: false, Status: status, Violations: violations}
}

func applied(status trade.Status) *TransitionResult {
	return &TransitionResult{Success: true, Status: status, Violations: []shared.Violation{}}
}
