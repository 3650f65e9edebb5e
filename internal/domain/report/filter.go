package report

import (
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
)

// Filter narrows every report query. It is passed explicitly to each call.
type Filter struct {
	DateFrom        time.Time             `json:"date_from"`
	DateUntil       time.Time             `json:"date_until"`
	BranchScope     *uuid.UUID            `json:"branch_id,omitempty"`
	PaymentTypes    []trade.PaymentType   `json:"type_po,omitempty"`
	Statuses        []trade.Status        `json:"status,omitempty"`
	PaymentStatuses []trade.PaymentStatus `json:"status_paid,omitempty"`
	OutstandingOnly bool                  `json:"outstanding_only"`
	TechnicianID    *uuid.UUID            `json:"technician_id,omitempty"`
	SupplierID      *uuid.UUID            `json:"supplier_id,omitempty"`
	ProductID       *uuid.UUID            `json:"product_id,omitempty"`
	CategoryID      *uuid.UUID            `json:"category_id,omitempty"`
}

// DefaultRange returns the trailing 12 full months before now:
// the first day of the month twelve months back through the last day of the previous month.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	from := firstOfMonth.AddDate(0, -12, 0)
	until := firstOfMonth.AddDate(0, 0, -1)
	return from, until
}

// Normalize fills a missing date range from DefaultRange and truncates both ends to whole days
func (f Filter) Normalize(now time.Time) (Filter, error) {
	defFrom, defUntil := DefaultRange(now)
	if f.DateFrom.IsZero() && f.DateUntil.IsZero() {
		f.DateFrom, f.DateUntil = defFrom, defUntil
	} else if f.DateFrom.IsZero() {
		f.DateFrom = startOfMonth(f.DateUntil).AddDate(0, -11, 0)
	} else if f.DateUntil.IsZero() {
		f.DateUntil = truncateDay(now)
	}
	f.DateFrom = truncateDay(f.DateFrom)
	f.DateUntil = truncateDay(f.DateUntil)
	if f.DateUntil.Before(f.DateFrom) {
		return f, shared.NewDomainError("INVALID_DATE_RANGE", "date_until must not be before date_from")
	}
	for _, pt := range f.PaymentTypes {
		if !pt.IsValid() {
			return f, shared.NewDomainError("INVALID_FILTER", "Unknown payment type "+pt.String())
		}
	}
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return f, shared.NewDomainError("INVALID_FILTER", "Unknown status "+s.String())
		}
	}
	for _, ps := range f.PaymentStatuses {
		if !ps.IsValid() {
			return f, shared.NewDomainError("INVALID_FILTER", "Unknown payment status "+ps.String())
		}
	}
	return f, nil
}

// Days is the number of calendar days between DateFrom and DateUntil
func (f Filter) Days() int {
	return int(calendarDate(f.DateUntil).Sub(calendarDate(f.DateFrom)) / (24 * time.Hour))
}

// InRange reports whether t falls on a day inside the range, both ends inclusive
func (f Filter) InRange(t time.Time) bool {
	day := truncateDay(t.In(f.DateFrom.Location()))
	return !day.Before(f.DateFrom) && !day.After(f.DateUntil)
}

// matchesOrder applies the header level predicates
func (f Filter) matchesOrder(o OrderFact) bool {
	if f.BranchScope != nil && o.BranchID != *f.BranchScope {
		return false
	}
	if !f.DateFrom.IsZero() && !f.InRange(o.OrderDate) {
		return false
	}
	if len(f.PaymentTypes) > 0 && !contains(f.PaymentTypes, o.PaymentType) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, o.Status) {
		return false
	}
	if len(f.PaymentStatuses) > 0 && !contains(f.PaymentStatuses, o.PaymentStatus) {
		return false
	}
	if f.OutstandingOnly && o.PaymentStatus == trade.PaymentStatusPaid {
		return false
	}
	if f.SupplierID != nil && o.Kind == trade.KindSupplier && (o.SupplierID == nil || *o.SupplierID != *f.SupplierID) {
		return false
	}
	return true
}

// matchesLine applies the line dimension predicates. Technicians exist only
// on service lines and products only on product and supplier lines, so a
// dimension filter drops every line of a kind that lacks it.
func (f Filter) matchesLine(kind trade.Kind, l LineFact) bool {
	if f.TechnicianID != nil {
		if kind != trade.KindService || l.TechnicianID == nil || *l.TechnicianID != *f.TechnicianID {
			return false
		}
	}
	if f.ProductID != nil || f.CategoryID != nil {
		if kind != trade.KindProduct && kind != trade.KindSupplier {
			return false
		}
		if f.ProductID != nil && (l.ProductID == nil || *l.ProductID != *f.ProductID) {
			return false
		}
		if f.CategoryID != nil && (l.CategoryID == nil || *l.CategoryID != *f.CategoryID) {
			return false
		}
	}
	return true
}

func (f Filter) hasLineFilter() bool {
	return f.TechnicianID != nil || f.ProductID != nil || f.CategoryID != nil
}

func (f Filter) matchesEntry(e LedgerEntry) bool {
	if f.BranchScope != nil && e.BranchID != *f.BranchScope {
		return false
	}
	return f.DateFrom.IsZero() || f.InRange(e.Date)
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// calendarDate drops the clock and zone, keeping only the date
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
