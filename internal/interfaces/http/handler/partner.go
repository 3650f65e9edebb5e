package handler

import (
	"context"

	apppartner "github.com/erp/procurement/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// Reconciler recomputes counterpart balances
type Reconciler interface {
	Reconcile(ctx context.Context) (*apppartner.ReconcileResult, error)
}

// PartnerHandler serves /partners
type PartnerHandler struct {
	BaseHandler
	reconciler Reconciler
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(reconciler Reconciler) *PartnerHandler {
	return &PartnerHandler{reconciler: reconciler}
}

// Reconcile handles POST /partners/reconcile
func (h *PartnerHandler) Reconcile(c *gin.Context) {
	result, err := h.reconciler.Reconcile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
