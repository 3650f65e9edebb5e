package handler

import (
	"context"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/report"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportQueries answers the four report endpoints
type ReportQueries interface {
	Overview(ctx context.Context, filter report.Filter) (*report.Overview, error)
	Trends(ctx context.Context, filter report.Filter) (*report.Trends, error)
	DebtAnalysis(ctx context.Context, filter report.Filter) (*report.DebtAnalysis, error)
	CashFlow(ctx context.Context, filter report.Filter) (*report.CashFlowAnalysis, error)
}

// ReportQuery is the query string accepted by every report endpoint.
// List parameters take repeated keys or comma separated values.
type ReportQuery struct {
	DateFrom        *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateUntil       *time.Time `form:"date_until" time_format:"2006-01-02"`
	BranchID        string     `form:"branch_id" binding:"omitempty,uuid"`
	TypePO          []string   `form:"type_po"`
	Status          []string   `form:"status"`
	StatusPaid      []string   `form:"status_paid"`
	OutstandingOnly bool       `form:"outstanding_only"`
	TechnicianID    string     `form:"technician_id" binding:"omitempty,uuid"`
	SupplierID      string     `form:"supplier_id" binding:"omitempty,uuid"`
	ProductID       string     `form:"product_id" binding:"omitempty,uuid"`
	CategoryID      string     `form:"category_id" binding:"omitempty,uuid"`
}

// Filter converts the query into a report filter; values are checked by Filter.Normalize
func (q ReportQuery) Filter() report.Filter {
	f := report.Filter{
		BranchScope:     optionalID(q.BranchID),
		OutstandingOnly: q.OutstandingOnly,
		TechnicianID:    optionalID(q.TechnicianID),
		SupplierID:      optionalID(q.SupplierID),
		ProductID:       optionalID(q.ProductID),
		CategoryID:      optionalID(q.CategoryID),
	}
	if q.DateFrom != nil {
		f.DateFrom = *q.DateFrom
	}
	if q.DateUntil != nil {
		f.DateUntil = *q.DateUntil
	}
	for _, v := range splitList(q.TypePO) {
		f.PaymentTypes = append(f.PaymentTypes, trade.PaymentType(v))
	}
	for _, v := range splitList(q.Status) {
		f.Statuses = append(f.Statuses, trade.Status(v))
	}
	for _, v := range splitList(q.StatusPaid) {
		f.PaymentStatuses = append(f.PaymentStatuses, trade.PaymentStatus(v))
	}
	return f
}

// optionalID parses an already validated UUID; empty means unset
func optionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ReportHandler serves /reports
type ReportHandler struct {
	BaseHandler
	reports ReportQueries
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports ReportQueries) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Overview handles GET /reports/overview
func (h *ReportHandler) Overview(c *gin.Context) {
	if f, ok := h.filter(c); ok {
		writeReport[report.Overview](h, c)(h.reports.Overview(c.Request.Context(), f))
	}
}

// Trends handles GET /reports/trends
func (h *ReportHandler) Trends(c *gin.Context) {
	if f, ok := h.filter(c); ok {
		writeReport[report.Trends](h, c)(h.reports.Trends(c.Request.Context(), f))
	}
}

// Debts handles GET /reports/debts
func (h *ReportHandler) Debts(c *gin.Context) {
	if f, ok := h.filter(c); ok {
		writeReport[report.DebtAnalysis](h, c)(h.reports.DebtAnalysis(c.Request.Context(), f))
	}
}

// CashFlow handles GET /reports/cash-flow
func (h *ReportHandler) CashFlow(c *gin.Context) {
	if f, ok := h.filter(c); ok {
		writeReport[report.CashFlowAnalysis](h, c)(h.reports.CashFlow(c.Request.Context(), f))
	}
}

func (h *ReportHandler) filter(c *gin.Context) (report.Filter, bool) {
	var q ReportQuery
	if !h.bindQuery(c, &q) {
		return report.Filter{}, false
	}
	return q.Filter(), true
}

func writeReport[T any](h *ReportHandler, c *gin.Context) func(*T, error) {
	return func(out *T, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, out)
	}
}
