package trade

import (
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceLine is a line of a service purchase. UnitCost is the technician fee captured at assignment.
type ServiceLine struct {
	LineAudit
	ServiceID    uuid.UUID
	ServiceName  string
	TechnicianID *uuid.UUID
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal
	UnitCost     decimal.Decimal
	ProfitAmount decimal.Decimal
	ProfitMargin decimal.Decimal
}

// LineCost is what the order owes the technician for this line
func (l ServiceLine) LineCost() decimal.Decimal {
	return l.UnitCost.Mul(l.Quantity)
}

// ServicePurchase is an order for services performed by technicians
type ServicePurchase struct {
	OrderHeader
	Lines []ServiceLine
}

var serviceEditable = []Status{StatusDraft, StatusRequested}

// NewServicePurchase opens a service purchase in Draft
func NewServicePurchase(in NewOrderHeaderInput) (*ServicePurchase, error) {
	header, err := newOrderHeader(in, MustLifecycle(KindService).Initial())
	if err != nil {
		return nil, err
	}
	return &ServicePurchase{OrderHeader: header, Lines: make([]ServiceLine, 0)}, nil
}

// Kind returns KindService
func (o *ServicePurchase) Kind() Kind {
	return KindService
}

// ActiveLines returns the lines that are not soft deleted
func (o *ServicePurchase) ActiveLines() []ServiceLine {
	out := make([]ServiceLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		if !l.IsDeleted() {
			out = append(out, l)
		}
	}
	return out
}

// AddLine appends a service line without a technician
func (o *ServicePurchase) AddLine(serviceID uuid.UUID, name string, quantity, unitPrice decimal.Decimal) (*ServiceLine, error) {
	if err := o.ensureEditable(serviceEditable...); err != nil {
		return nil, err
	}
	if serviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERVICE", "Service ID cannot be empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validateAmount("Unit price", unitPrice); err != nil {
		return nil, err
	}

	line := ServiceLine{
		LineAudit:   newLineAudit(),
		ServiceID:   serviceID,
		ServiceName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice),
	}
	o.Lines = append(o.Lines, line)
	o.recalculateTotal()
	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLine changes quantity and unit price, re-deriving profit if a technician is assigned
func (o *ServicePurchase) UpdateLine(lineID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if err := o.ensureEditable(serviceEditable...); err != nil {
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
	if line.TechnicianID != nil {
		o.applyProfit(line)
	}
	line.UpdatedAt = time.Now()
	o.recalculateTotal()
	return nil
}

// RemoveLine soft deletes a line
func (o *ServicePurchase) RemoveLine(lineID uuid.UUID) error {
	if err := o.ensureEditable(serviceEditable...); err != nil {
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

// AssignTechnician selects the technician for a line and captures their fee as unit cost
func (o *ServicePurchase) AssignTechnician(lineID, technicianID uuid.UUID, serviceFee decimal.Decimal) error {
	if err := o.ensureEditable(serviceEditable...); err != nil {
		return err
	}
	if technicianID == uuid.Nil {
		return shared.NewDomainError("INVALID_TECHNICIAN", "Technician ID cannot be empty")
	}
	if err := validateAmount("Service fee", serviceFee); err != nil {
		return err
	}
	line := o.line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	tech := technicianID
	line.TechnicianID = &tech
	line.UnitCost = serviceFee
	o.applyProfit(line)
	line.UpdatedAt = time.Now()
	o.Touch()
	return nil
}

func (o *ServicePurchase) applyProfit(line *ServiceLine) {
	p := CalculateProfit(line.UnitPrice, line.UnitCost, line.Quantity)
	line.UnitCost = p.UnitCost
	line.ProfitAmount = p.Amount
	line.ProfitMargin = p.Margin
}

// Guard evaluates the preconditions of t
func (o *ServicePurchase) Guard(t Transition, _ GuardContext) shared.ValidationResult {
	lines := o.ActiveLines()
	switch t {
	case TransitionRequest:
		return o.checkRequest(len(lines))
	case TransitionApprove:
		r := shared.Pass()
		if len(lines) == 0 {
			r.Add(CodeNoLines, "lines", "Order must have at least one line item")
		}
		for i, l := range lines {
			if l.TechnicianID == nil {
				r.Add(CodeTechnicianRequired, fieldIndex("lines", i, "technician_id"),
					"A technician must be assigned to "+l.ServiceName)
			}
		}
		return r
	case TransitionDone:
		return o.checkDoneCredit()
	}
	return shared.Pass()
}

// Apply performs t and returns its side effects
func (o *ServicePurchase) Apply(t Transition, now time.Time) ([]Effect, error) {
	if err := o.move(KindService, t, now); err != nil {
		return nil, err
	}

	switch t {
	case TransitionApprove:
		return o.technicianEffects(BalanceRecord), nil
	case TransitionDone:
		if o.IsCredit() {
			return o.technicianEffects(BalanceSettle), nil
		}
	}
	return nil, nil
}

func (o *ServicePurchase) technicianEffects(op BalanceOp) []Effect {
	lines := o.ActiveLines()
	effects := make([]Effect, 0, len(lines))
	for _, l := range lines {
		if l.TechnicianID == nil {
			continue
		}
		effects = append(effects, AdjustBalance{
			Party:   PartyTechnician,
			PartyID: *l.TechnicianID,
			Op:      op,
			Amount:  l.LineCost(),
			Credit:  o.IsCredit(),
		})
	}
	return effects
}

func (o *ServicePurchase) line(id uuid.UUID) *ServiceLine {
	for i := range o.Lines {
		if o.Lines[i].ID == id && !o.Lines[i].IsDeleted() {
			return &o.Lines[i]
		}
	}
	return nil
}

func (o *ServicePurchase) recalculateTotal() {
	total := decimal.Zero
	for _, l := range o.Lines {
		if !l.IsDeleted() {
			total = total.Add(l.LineTotal)
		}
	}
	o.TotalAmount = total
	o.Touch()
}

var _ Order = (*ServicePurchase)(nil)
