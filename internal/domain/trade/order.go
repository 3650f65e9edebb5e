package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Violation codes reported by guards
const (
	CodeNoLines              = "NO_LINES"
	CodeNameRequired         = "NAME_REQUIRED"
	CodePaymentNotPaid       = "PAYMENT_NOT_PAID"
	CodePaymentProofMissing  = "PAYMENT_PROOF_MISSING"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeExpectedDateRequired = "EXPECTED_DATE_REQUIRED"
	CodeTechnicianRequired   = "TECHNICIAN_REQUIRED"
)

// Order is the behaviour shared by the three order kinds
type Order interface {
	shared.AggregateRoot
	Kind() Kind
	Header() *OrderHeader
	// Guard evaluates the preconditions of t without side effects.
	Guard(t Transition, env GuardContext) shared.ValidationResult
	// Apply moves the order along t and returns the side effects the caller must carry out.
	Apply(t Transition, now time.Time) ([]Effect, error)
}

// GuardContext carries the outside facts guards may consult
type GuardContext struct {
	Stock StockLevels
}

// OrderHeader holds the fields every order kind has
type OrderHeader struct {
	shared.BaseAggregateRoot
	BranchID      uuid.UUID
	OrderNumber   string
	Name          string
	RequesterID   uuid.UUID
	OrderDate     time.Time
	ExpectedDate  *time.Time
	Status        Status
	PaymentType   PaymentType
	PaymentStatus PaymentStatus
	PaymentProof  string
	Notes         string
	TotalAmount   decimal.Decimal
	DeletedAt     *time.Time
}

// NewOrderHeaderInput is the data needed to open an order
type NewOrderHeaderInput struct {
	BranchID     uuid.UUID
	OrderNumber  string
	Name         string
	RequesterID  uuid.UUID
	OrderDate    time.Time
	ExpectedDate *time.Time
	PaymentType  PaymentType
	Notes        string
}

func newOrderHeader(in NewOrderHeaderInput, initial Status) (OrderHeader, error) {
	if in.BranchID == uuid.Nil {
		return OrderHeader{}, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if in.OrderNumber == "" {
		return OrderHeader{}, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(in.OrderNumber) > 64 {
		return OrderHeader{}, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 64 characters")
	}
	if in.RequesterID == uuid.Nil {
		return OrderHeader{}, shared.NewDomainError("INVALID_REQUESTER", "Requester ID cannot be empty")
	}
	paymentType := in.PaymentType
	if paymentType == "" {
		paymentType = PaymentTypeCash
	}
	if !paymentType.IsValid() {
		return OrderHeader{}, shared.NewDomainError("INVALID_PAYMENT_TYPE", fmt.Sprintf("Unknown payment type %q", in.PaymentType))
	}
	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	return OrderHeader{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          in.BranchID,
		OrderNumber:       in.OrderNumber,
		Name:              strings.TrimSpace(in.Name),
		RequesterID:       in.RequesterID,
		OrderDate:         orderDate,
		ExpectedDate:      in.ExpectedDate,
		Status:            initial,
		PaymentType:       paymentType,
		PaymentStatus:     PaymentStatusUnpaid,
		Notes:             in.Notes,
		TotalAmount:       decimal.Zero,
	}, nil
}

// Header returns the header itself so kinds embedding it satisfy Order
func (h *OrderHeader) Header() *OrderHeader {
	return h
}

// IsCredit reports whether the order is settled on credit
func (h *OrderHeader) IsCredit() bool {
	return h.PaymentType == PaymentTypeCredit
}

// IsPaid reports whether payment status is paid
func (h *OrderHeader) IsPaid() bool {
	return h.PaymentStatus == PaymentStatusPaid
}

// HasProof reports whether a payment-proof artifact is attached
func (h *OrderHeader) HasProof() bool {
	return strings.TrimSpace(h.PaymentProof) != ""
}

// IsDeleted reports whether the order was soft deleted
func (h *OrderHeader) IsDeleted() bool {
	return h.DeletedAt != nil
}

// Rename sets the human-readable name
func (h *OrderHeader) Rename(name string) {
	h.Name = strings.TrimSpace(name)
	h.Touch()
}

// SetExpectedDate sets or clears the expected delivery date
func (h *OrderHeader) SetExpectedDate(date *time.Time) {
	h.ExpectedDate = date
	h.Touch()
}

// SetNotes replaces the free-text notes
func (h *OrderHeader) SetNotes(notes string) {
	h.Notes = notes
	h.Touch()
}

// MarkPaid records payment with its proof artifact
func (h *OrderHeader) MarkPaid(proof string) error {
	if strings.TrimSpace(proof) == "" {
		return shared.NewDomainError("INVALID_PAYMENT_PROOF", "Payment proof is required to mark an order paid")
	}
	if h.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot record payment on a cancelled order")
	}
	h.PaymentProof = proof
	h.PaymentStatus = PaymentStatusPaid
	h.Touch()
	return nil
}

// SoftDelete marks the order deleted. Only orders that never left their initial status qualify.
func (h *OrderHeader) SoftDelete(initial Status, now time.Time) error {
	if h.Status != initial && h.Status != StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot delete order in %s status", h.Status))
	}
	h.DeletedAt = &now
	return nil
}

// checkPaidWithProof records a violation for each missing payment precondition
func (h *OrderHeader) checkPaidWithProof(r *shared.ValidationResult, reason string) {
	if !h.IsPaid() {
		r.Add(CodePaymentNotPaid, "payment_status", fmt.Sprintf("%s must be paid before it can proceed", reason))
	}
	if !h.HasProof() {
		r.Add(CodePaymentProofMissing, "payment_proof", "A payment proof must be attached")
	}
}

// checkRequest holds the request guard common to product and service orders
func (h *OrderHeader) checkRequest(lineCount int) shared.ValidationResult {
	r := shared.Pass()
	if lineCount == 0 {
		r.Add(CodeNoLines, "lines", "Order must have at least one line item")
	}
	if h.Name == "" {
		r.Add(CodeNameRequired, "name", "Order name is required")
	}
	if h.PaymentType == PaymentTypeCash {
		h.checkPaidWithProof(&r, "A cash order")
	}
	return r
}

// checkDoneCredit is the done guard shared by product and service orders
func (h *OrderHeader) checkDoneCredit() shared.ValidationResult {
	r := shared.Pass()
	if h.IsCredit() {
		h.checkPaidWithProof(&r, "A credit order")
	}
	return r
}

// move applies the lifecycle edge and raises the status change event
func (h *OrderHeader) move(kind Kind, t Transition, now time.Time) error {
	if h.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot transition a deleted order")
	}
	next, err := MustLifecycle(kind).Target(h.Status, t)
	if err != nil {
		return err
	}
	from := h.Status
	h.Status = next
	h.UpdatedAt = now
	h.AddDomainEvent(NewOrderStatusChangedEvent(kind, h, from, t))
	return nil
}

// ensureEditable guards line mutations
func (h *OrderHeader) ensureEditable(editable ...Status) error {
	if h.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a deleted order")
	}
	for _, s := range editable {
		if h.Status == s {
			return nil
		}
	}
	return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify lines in %s status", h.Status))
}

func validateQuantity(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return nil
}

func validateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("%s cannot be negative", field))
	}
	return nil
}

// LineAudit is embedded in every line kind
type LineAudit struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func newLineAudit() LineAudit {
	now := time.Now()
	return LineAudit{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// IsDeleted reports whether the line was soft deleted
func (l *LineAudit) IsDeleted() bool {
	return l.DeletedAt != nil
}
