package handler

import (
	"context"

	appfinance "github.com/erp/procurement/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerCommands records direct income and expenses
type LedgerCommands interface {
	RecordIncome(ctx context.Context, req appfinance.RecordIncomeRequest) (*appfinance.LedgerEntryResponse, error)
	RecordExpense(ctx context.Context, req appfinance.RecordExpenseRequest) (*appfinance.LedgerEntryResponse, error)
	DeleteIncome(ctx context.Context, id uuid.UUID) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

// LedgerHandler serves /ledger
type LedgerHandler struct {
	BaseHandler
	ledger LedgerCommands
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger LedgerCommands) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// RecordIncome handles POST /ledger/income
func (h *LedgerHandler) RecordIncome(c *gin.Context) {
	var req appfinance.RecordIncomeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.ledger.RecordIncome(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// RecordExpense handles POST /ledger/expense
func (h *LedgerHandler) RecordExpense(c *gin.Context) {
	var req appfinance.RecordExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.ledger.RecordExpense(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// DeleteIncome handles DELETE /ledger/income/:id
func (h *LedgerHandler) DeleteIncome(c *gin.Context) {
	h.remove(c, h.ledger.DeleteIncome)
}

// DeleteExpense handles DELETE /ledger/expense/:id
func (h *LedgerHandler) DeleteExpense(c *gin.Context) {
	h.remove(c, h.ledger.DeleteExpense)
}

func (h *LedgerHandler) remove(c *gin.Context, fn func(context.Context, uuid.UUID) error) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
