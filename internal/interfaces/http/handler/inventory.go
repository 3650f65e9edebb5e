package handler

import (
	"context"

	appinventory "github.com/erp/procurement/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// BatchQueries reads the batch ledger
type BatchQueries interface {
	ExpiringBatches(ctx context.Context, days int) ([]appinventory.ExpiringBatchResponse, error)
}

// ExpiringQuery is the query string of GET /inventory/batches/expiring
type ExpiringQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// InventoryHandler serves /inventory
type InventoryHandler struct {
	BaseHandler
	batches BatchQueries
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(batches BatchQueries) *InventoryHandler {
	return &InventoryHandler{batches: batches}
}

// ExpiringBatches handles GET /inventory/batches/expiring?days=N
func (h *InventoryHandler) ExpiringBatches(c *gin.Context) {
	var q ExpiringQuery
	if !h.bindQuery(c, &q) {
		return
	}
	batches, err := h.batches.ExpiringBatches(c.Request.Context(), q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}
