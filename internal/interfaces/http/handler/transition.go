package handler

import (
	"context"

	apptrade "github.com/erp/procurement/internal/application/trade"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransitionCommands drives the order state machine
type TransitionCommands interface {
	Submit(ctx context.Context, kind trade.Kind, orderID uuid.UUID, t trade.Transition) (*apptrade.TransitionResult, error)
	Preview(ctx context.Context, kind trade.Kind, orderID uuid.UUID, t trade.Transition) (*apptrade.TransitionResult, error)
}

// TransitionHandler serves /orders/:kind/:id/transitions/:name
type TransitionHandler struct {
	BaseHandler
	transitions TransitionCommands
}

// NewTransitionHandler creates a new TransitionHandler
func NewTransitionHandler(transitions TransitionCommands) *TransitionHandler {
	return &TransitionHandler{transitions: transitions}
}

// Submit handles POST /orders/:kind/:id/transitions/:name.
// A refused transition is still a 200 with success=false and the violations.
func (h *TransitionHandler) Submit(c *gin.Context) {
	h.run(c, h.transitions.Submit)
}

// Preview handles GET /orders/:kind/:id/transitions/:name/preview
func (h *TransitionHandler) Preview(c *gin.Context) {
	h.run(c, h.transitions.Preview)
}

func (h *TransitionHandler) run(c *gin.Context, fn func(context.Context, trade.Kind, uuid.UUID, trade.Transition) (*apptrade.TransitionResult, error)) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), kind, id, trade.Transition(c.Param("name")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
