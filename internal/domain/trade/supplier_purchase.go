package trade

import (
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierLine is a product bought from a supplier at a unit cost
type SupplierLine struct {
	LineAudit
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	LineTotal   decimal.Decimal
	ExpiryDate  *time.Time
}

// SupplierPurchase restocks products from a supplier. It is created directly in Requested.
type SupplierPurchase struct {
	OrderHeader
	SupplierID   uuid.UUID
	SupplierCode string
	ReceivedAt   *time.Time
	Lines        []SupplierLine
}

var supplierEditable = []Status{StatusRequested}

// NewSupplierPurchase opens a supplier purchase in Requested
func NewSupplierPurchase(in NewOrderHeaderInput, supplierID uuid.UUID, supplierCode string) (*SupplierPurchase, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	header, err := newOrderHeader(in, MustLifecycle(KindSupplier).Initial())
	if err != nil {
		return nil, err
	}
	return &SupplierPurchase{
		OrderHeader:  header,
		SupplierID:   supplierID,
		SupplierCode: supplierCode,
		Lines:        make([]SupplierLine, 0),
	}, nil
}

// Kind returns KindSupplier
func (o *SupplierPurchase) Kind() Kind {
	return KindSupplier
}

// ActiveLines returns the lines that are not soft deleted
func (o *SupplierPurchase) ActiveLines() []SupplierLine {
	out := make([]SupplierLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		if !l.IsDeleted() {
			out = append(out, l)
		}
	}
	return out
}

// AddLine appends a line bought at unitCost
func (o *SupplierPurchase) AddLine(productID uuid.UUID, code, name string, quantity, unitCost decimal.Decimal, expiry *time.Time) (*SupplierLine, error) {
	if err := o.ensureEditable(supplierEditable...); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validateAmount("Unit cost", unitCost); err != nil {
		return nil, err
	}

	line := SupplierLine{
		LineAudit:   newLineAudit(),
		ProductID:   productID,
		ProductCode: code,
		ProductName: name,
		Quantity:    quantity,
		UnitCost:    unitCost,
		LineTotal:   quantity.Mul(unitCost),
		ExpiryDate:  expiry,
	}
	o.Lines = append(o.Lines, line)
	o.recalculateTotal()
	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLine changes quantity and unit cost of a line
func (o *SupplierPurchase) UpdateLine(lineID uuid.UUID, quantity, unitCost decimal.Decimal) error {
	if err := o.ensureEditable(supplierEditable...); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if err := validateAmount("Unit cost", unitCost); err != nil {
		return err
	}
	line := o.line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	line.Quantity = quantity
	line.UnitCost = unitCost
	line.LineTotal = quantity.Mul(unitCost)
	line.UpdatedAt = time.Now()
	o.recalculateTotal()
	return nil
}

// RemoveLine soft deletes a line
func (o *SupplierPurchase) RemoveLine(lineID uuid.UUID) error {
	if err := o.ensureEditable(supplierEditable...); err != nil {
		return err
	}
	line := o.line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	now := time.Now()
	line.DeletedAt = &now
	o.recalculateTotal()
	return nil
}

// Guard evaluates the preconditions of t. Payment violations here are
// reported the same way as every other guard, never raised.
func (o *SupplierPurchase) Guard(t Transition, _ GuardContext) shared.ValidationResult {
	r := shared.Pass()
	switch t {
	case TransitionProcess:
		if len(o.ActiveLines()) == 0 {
			r.Add(CodeNoLines, "lines", "Order must have at least one line item")
		}
		if o.PaymentType == PaymentTypeCash {
			o.checkPaidWithProof(&r, "A cash order")
		}
	case TransitionReceive:
		if len(o.ActiveLines()) == 0 {
			r.Add(CodeNoLines, "lines", "Order must have at least one line item")
		}
	case TransitionDone:
		o.checkPaidWithProof(&r, "A supplier order")
	}
	return r
}

// Apply performs t and returns its side effects
func (o *SupplierPurchase) Apply(t Transition, now time.Time) ([]Effect, error) {
	from := o.Status
	if err := o.move(KindSupplier, t, now); err != nil {
		return nil, err
	}

	switch t {
	case TransitionProcess:
		return []Effect{o.balance(BalanceRecord)}, nil
	case TransitionReceive:
		if o.ReceivedAt == nil {
			received := now
			o.ReceivedAt = &received
		}
		lines := o.ActiveLines()
		effects := make([]Effect, 0, len(lines))
		for _, l := range lines {
			effects = append(effects, ReceiveBatch{
				SupplierPurchaseID: o.ID,
				SupplierID:         o.SupplierID,
				SupplierCode:       o.SupplierCode,
				ProductID:          l.ProductID,
				ProductCode:        l.ProductCode,
				Quantity:           l.Quantity,
				UnitCost:           l.UnitCost,
				EntryDate:          *o.ReceivedAt,
				ExpiryDate:         l.ExpiryDate,
			})
		}
		return effects, nil
	case TransitionDone:
		if o.IsCredit() {
			return []Effect{o.balance(BalanceSettle)}, nil
		}
	case TransitionCancel:
		if from == StatusProcessing {
			return []Effect{o.balance(BalanceReverse)}, nil
		}
	}
	return nil, nil
}

// SetReceivedAt records an explicit receipt time ahead of the receive transition
func (o *SupplierPurchase) SetReceivedAt(at time.Time) error {
	if o.Status != StatusRequested && o.Status != StatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot set receipt time in %s status", o.Status))
	}
	o.ReceivedAt = &at
	o.Touch()
	return nil
}

func (o *SupplierPurchase) balance(op BalanceOp) AdjustBalance {
	return AdjustBalance{
		Party:   PartySupplier,
		PartyID: o.SupplierID,
		Op:      op,
		Amount:  o.TotalAmount,
		Credit:  o.IsCredit(),
	}
}

func (o *SupplierPurchase) line(id uuid.UUID) *SupplierLine {
	for i := range o.Lines {
		if o.Lines[i].ID == id && !o.Lines[i].IsDeleted() {
			return &o.Lines[i]
		}
	}
	return nil
}

func (o *SupplierPurchase) recalculateTotal() {
	total := decimal.Zero
	for _, l := range o.Lines {
		if !l.IsDeleted() {
			total = total.Add(l.LineTotal)
		}
	}
	o.TotalAmount = total
	o.Touch()
}

func fieldIndex(prefix string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", prefix, i, field)
}

var _ Order = (*SupplierPurchase)(nil)
