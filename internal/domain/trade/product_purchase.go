package trade

import (
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductLine is a line of a product purchase. Cost fields are filled by the process transition.
type ProductLine struct {
	LineAudit
	ProductID    uuid.UUID
	ProductCode  string
	ProductName  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal
	UnitCost     decimal.Decimal
	ProfitAmount decimal.Decimal
	ProfitMargin decimal.Decimal
}

// ProductPurchase is an order for products drawn from branch stock
type ProductPurchase struct {
	OrderHeader
	Lines []ProductLine
}

var productEditable = []Status{StatusDraft, StatusRequested}

// NewProductPurchase opens a product purchase in Draft
func NewProductPurchase(in NewOrderHeaderInput) (*ProductPurchase, error) {
	header, err := newOrderHeader(in, MustLifecycle(KindProduct).Initial())
	if err != nil {
		return nil, err
	}
	return &ProductPurchase{OrderHeader: header, Lines: make([]ProductLine, 0)}, nil
}

// Kind returns KindProduct
func (o *ProductPurchase) Kind() Kind {
	return KindProduct
}

// ActiveLines returns the lines that are not soft deleted
func (o *ProductPurchase) ActiveLines() []ProductLine {
	out := make([]ProductLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		if !l.IsDeleted() {
			out = append(out, l)
		}
	}
	return out
}

// AddLine appends a product line
func (o *ProductPurchase) AddLine(productID uuid.UUID, code, name string, quantity, unitPrice decimal.Decimal) (*ProductLine, error) {
	if err := o.ensureEditable(productEditable...); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validateAmount("Unit price", unitPrice); err != nil {
		return nil, err
	}

	line := ProductLine{
		LineAudit:   newLineAudit(),
		ProductID:   productID,
		ProductCode: code,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice),
	}
	o.Lines = append(o.Lines, line)
	o.recalculateTotal()
	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLine changes quantity and unit price of a line
func (o *ProductPurchase) UpdateLine(lineID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if err := o.ensureEditable(productEditable...); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if err := validateAmount("Unit price", unitPrice); err != nil {
		return err
	}
	line := o.line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	line.Quantity = quantity
	line.UnitPrice = unitPrice
	line.LineTotal = quantity.Mul(unitPrice)
	line.UpdatedAt = time.Now()
	o.recalculateTotal()
	return nil
}

// RemoveLine soft deletes a line
func (o *ProductPurchase) RemoveLine(lineID uuid.UUID) error {
	if err := o.ensureEditable(productEditable...); err != nil {
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

// ApplyCost stores the costing result on a line
func (o *ProductPurchase) ApplyCost(lineID uuid.UUID, unitCost decimal.Decimal) error {
	line := o.line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	p := CalculateProfit(line.UnitPrice, unitCost, line.Quantity)
	line.UnitCost = p.UnitCost
	line.ProfitAmount = p.Amount
	line.ProfitMargin = p.Margin
	line.UpdatedAt = time.Now()
	return nil
}

// Guard evaluates the preconditions of t
func (o *ProductPurchase) Guard(t Transition, env GuardContext) shared.ValidationResult {
	lines := o.ActiveLines()
	switch t {
	case TransitionRequest:
		return o.checkRequest(len(lines))
	case TransitionProcess:
		r := shared.Pass()
		if len(lines) == 0 {
			r.Add(CodeNoLines, "lines", "Order must have at least one line item")
		}
		checkStock(&r, lines, env.Stock)
		return r
	case TransitionShip:
		r := shared.Pass()
		if o.ExpectedDate == nil {
			r.Add(CodeExpectedDateRequired, "expected_date", "Expected delivery date must be set before shipping")
		}
		checkStock(&r, lines, env.Stock)
		return r
	case TransitionDone:
		return o.checkDoneCredit()
	}
	return shared.Pass()
}

// Apply performs t and returns its side effects
func (o *ProductPurchase) Apply(t Transition, now time.Time) ([]Effect, error) {
	if err := o.move(KindProduct, t, now); err != nil {
		return nil, err
	}

	lines := o.ActiveLines()
	switch t {
	case TransitionProcess:
		reqs := make([]CostRequest, 0, len(lines))
		for _, l := range lines {
			reqs = append(reqs, CostRequest{LineID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity})
		}
		return []Effect{CostLines{Lines: reqs}}, nil
	case TransitionShip:
		demand := demandByProduct(lines)
		effects := make([]Effect, 0, len(demand))
		for _, d := range demand {
			effects = append(effects, DeductStock{
				ProductID:   d.ProductID,
				ProductCode: d.ProductCode,
				ProductName: d.ProductName,
				Quantity:    d.Quantity,
			})
		}
		return effects, nil
	}
	return nil, nil
}

// ProductIDs returns the distinct products referenced by live lines
func (o *ProductPurchase) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	out := make([]uuid.UUID, 0)
	for _, l := range o.ActiveLines() {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			out = append(out, l.ProductID)
		}
	}
	return out
}

func (o *ProductPurchase) line(id uuid.UUID) *ProductLine {
	for i := range o.Lines {
		if o.Lines[i].ID == id && !o.Lines[i].IsDeleted() {
			return &o.Lines[i]
		}
	}
	return nil
}

// recalculateTotal keeps TotalAmount equal to the sum of live line totals
func (o *ProductPurchase) recalculateTotal() {
	total := decimal.Zero
	for _, l := range o.Lines {
		if !l.IsDeleted() {
			total = total.Add(l.LineTotal)
		}
	}
	o.TotalAmount = total
	o.Touch()
}

var _ Order = (*ProductPurchase)(nil)
