package handler

import (
	"context"

	apptrade "github.com/erp/procurement/internal/application/trade"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderCommands is the order CRUD surface the handler drives
type OrderCommands interface {
	Create(ctx context.Context, kind trade.Kind, req apptrade.CreateOrderRequest) (*apptrade.OrderResponse, error)
	GetByID(ctx context.Context, kind trade.Kind, id uuid.UUID) (*apptrade.OrderResponse, error)
	List(ctx context.Context, kind trade.Kind, req apptrade.ListOrdersRequest) (shared.Paginated[apptrade.OrderResponse], error)
	Update(ctx context.Context, kind trade.Kind, id uuid.UUID, req apptrade.UpdateOrderRequest) (*apptrade.OrderResponse, error)
	AddLine(ctx context.Context, kind trade.Kind, id uuid.UUID, req apptrade.AddLineRequest) (*apptrade.OrderResponse, error)
	UpdateLine(ctx context.Context, kind trade.Kind, id, lineID uuid.UUID, req apptrade.UpdateLineRequest) (*apptrade.OrderResponse, error)
	RemoveLine(ctx context.Context, kind trade.Kind, id, lineID uuid.UUID) (*apptrade.OrderResponse, error)
	AssignTechnician(ctx context.Context, id, lineID uuid.UUID, req apptrade.AssignTechnicianRequest) (*apptrade.OrderResponse, error)
	MarkPaid(ctx context.Context, kind trade.Kind, id uuid.UUID, req apptrade.MarkPaidRequest) (*apptrade.OrderResponse, error)
	Delete(ctx context.Context, kind trade.Kind, id uuid.UUID) error
}

// OrderHandler serves /orders/:kind
type OrderHandler struct {
	BaseHandler
	orders OrderCommands
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderCommands) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles POST /orders/:kind
func (h *OrderHandler) Create(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}
	var req apptrade.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), kind, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /orders/:kind/:id
func (h *OrderHandler) Get(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetByID(c.Request.Context(), kind, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /orders/:kind
func (h *OrderHandler) List(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}
	var req apptrade.ListOrdersRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.orders.List(c.Request.Context(), kind, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /orders/:kind/:id
func (h *OrderHandler) Update(c *gin.Context) {
	kind, id, ok := h.orderRef(c)
	if !ok {
		return
	}
	var req apptrade.UpdateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c)(h.orders.Update(c.Request.Context(), kind, id, req))
}

// AddLine handles POST /orders/:kind/:id/lines
func (h *OrderHandler) AddLine(c *gin.Context) {
	kind, id, ok := h.orderRef(c)
	if !ok {
		return
	}
	var req apptrade.AddLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c)(h.orders.AddLine(c.Request.Context(), kind, id, req))
}

// UpdateLine handles PUT /orders/:kind/:id/lines/:lineId
func (h *OrderHandler) UpdateLine(c *gin.Context) {
	kind, id, ok := h.orderRef(c)
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "lineId")
	if !ok {
		return
	}
	var req apptrade.UpdateLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c)(h.orders.UpdateLine(c.Request.Context(), kind, id, lineID, req))
}

// RemoveLine handles DELETE /orders/:kind/:id/lines/:lineId
func (h *OrderHandler) RemoveLine(c *gin.Context) {
	kind, id, ok := h.orderRef(c)
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "lineId")
	if !ok {
		return
	}
	h.respond(c)(h.orders.RemoveLine(c.Request.Context(), kind, id, lineID))
}

// AssignTechnician handles POST /orders/service/:id/lines/:lineId/technician.
// The route is registered under :kind; other kinds have no technicians.
func (h *OrderHandler) AssignTechnician(c *gin.Context) {
	kind, id, ok := h.orderRef(c)
	if !ok {
		return
	}
	if kind != trade.KindService {
		h.BadRequest(c, "Technicians can only be assigned on service orders")
		return
	}
	lineID, ok := h.uuidParam(c, "lineId")
	if !ok {
		return
	}
	var req apptrade.AssignTechnicianRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c)(h.orders.AssignTechnician(c.Request.Context(), id, lineID, req))
}

// MarkPaid handles POST /orders/:kind/:id/payment
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	kind, id, ok := h.orderRef(c)
	if !ok {
		return
	}
	var req apptrade.MarkPaidRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.respond(c)(h.orders.MarkPaid(c.Request.Context(), kind, id, req))
}

// Delete handles DELETE /orders/:kind/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	kind, id, ok := h.orderRef(c)
	if !ok {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), kind, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *OrderHandler) orderRef(c *gin.Context) (trade.Kind, uuid.UUID, bool) {
	kind, ok := h.kindParam(c)
	if !ok {
		return "", uuid.Nil, false
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return "", uuid.Nil, false
	}
	return kind, id, true
}

// respond writes the order or the error returned by a mutation
func (h *OrderHandler) respond(c *gin.Context) func(*apptrade.OrderResponse, error) {
	return func(order *apptrade.OrderResponse, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, order)
	}
}
