package trade

// Kind identifies which of the three purchase order flavours an order is
type Kind string

const (
	KindProduct  Kind = "product"
	KindService  Kind = "service"
	KindSupplier Kind = "supplier"
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	switch k {
	case KindProduct, KindService, KindSupplier:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// AllKinds returns every order kind
func AllKinds() []Kind {
	return []Kind{KindProduct, KindService, KindSupplier}
}

// Status is the lifecycle position of an order. Each kind uses a subset.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusRequested  Status = "requested"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusReceived   Status = "received"
	StatusApproved   Status = "approved"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is known to any kind
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusRequested, StatusProcessing, StatusShipped, StatusReceived,
		StatusApproved, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CountsTowardReports is false for drafts and cancelled orders
func (s Status) CountsTowardReports() bool {
	return s != StatusDraft && s != StatusCancelled
}

// Transition names a lifecycle operation
type Transition string

const (
	TransitionRequest  Transition = "request"
	TransitionProcess  Transition = "process"
	TransitionShip     Transition = "ship"
	TransitionReceive  Transition = "receive"
	TransitionApprove  Transition = "approve"
	TransitionProgress Transition = "progress"
	TransitionDone     Transition = "done"
	TransitionCancel   Transition = "cancel"
)

// allTransitions fixes the order used when listing transitions
var allTransitions = []Transition{
	TransitionRequest,
	TransitionProcess,
	TransitionShip,
	TransitionReceive,
	TransitionApprove,
	TransitionProgress,
	TransitionDone,
	TransitionCancel,
}

// IsValid checks if the transition name is known
func (t Transition) IsValid() bool {
	for _, known := range allTransitions {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the string representation of Transition
func (t Transition) String() string {
	return string(t)
}

// PaymentType is how an order is settled
type PaymentType string

const (
	PaymentTypeCash   PaymentType = "cash"
	PaymentTypeCredit PaymentType = "credit"
)

// IsValid checks if the payment type is known
func (p PaymentType) IsValid() bool {
	return p == PaymentTypeCash || p == PaymentTypeCredit
}

// String returns the string representation of PaymentType
func (p PaymentType) String() string {
	return string(p)
}

// PaymentStatus tracks whether an order has been settled
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// IsValid checks if the payment status is known
func (p PaymentStatus) IsValid() bool {
	return p == PaymentStatusUnpaid || p == PaymentStatusPaid
}

// String returns the string representation of PaymentStatus
func (p PaymentStatus) String() string {
	return string(p)
}
