package trade

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type for all purchase orders
const AggregateTypeOrder = "PurchaseOrder"

// EventTypeOrderStatusChanged is raised after every successful transition
const EventTypeOrderStatusChanged = "OrderStatusChanged"

// OrderStatusChangedEvent carries what a notifier needs about a transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	Kind        Kind            `json:"kind"`
	OrderNumber string          `json:"order_number"`
	OrderName   string          `json:"order_name"`
	BranchID    uuid.UUID       `json:"branch_id"`
	RequesterID uuid.UUID       `json:"requester_id"`
	Transition  Transition      `json:"transition"`
	FromStatus  Status          `json:"from_status"`
	ToStatus    Status          `json:"to_status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderStatusChangedEvent creates the event for a transition already applied to h
func NewOrderStatusChangedEvent(kind Kind, h *OrderHeader, from Status, t Transition) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, h.ID),
		OrderID:         h.ID,
		Kind:            kind,
		OrderNumber:     h.OrderNumber,
		OrderName:       h.Name,
		BranchID:        h.BranchID,
		RequesterID:     h.RequesterID,
		Transition:      t,
		FromStatus:      from,
		ToStatus:        h.Status,
		TotalAmount:     h.TotalAmount,
	}
}
