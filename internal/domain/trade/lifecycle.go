package trade

import (
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
)

// ErrIllegalTransition is returned when a transition is not an edge out of the current status
var ErrIllegalTransition = shared.NewDomainError("ILLEGAL_TRANSITION", "Transition not allowed from current status")

// Lifecycle is the directed status graph of one order kind
type Lifecycle struct {
	kind    Kind
	initial Status
	edges   map[Status]map[Transition]Status
}

var lifecycles = map[Kind]*Lifecycle{
	KindProduct: {
		kind:    KindProduct,
		initial: StatusDraft,
		edges: map[Status]map[Transition]Status{
			StatusDraft:      {TransitionRequest: StatusRequested, TransitionCancel: StatusCancelled},
			StatusRequested:  {TransitionProcess: StatusProcessing, TransitionCancel: StatusCancelled},
			StatusProcessing: {TransitionShip: StatusShipped},
			StatusShipped:    {TransitionReceive: StatusReceived},
			StatusReceived:   {TransitionDone: StatusDone},
		},
	},
	KindService: {
		kind:    KindService,
		initial: StatusDraft,
		edges: map[Status]map[Transition]Status{
			StatusDraft:      {TransitionRequest: StatusRequested, TransitionCancel: StatusCancelled},
			StatusRequested:  {TransitionApprove: StatusApproved, TransitionCancel: StatusCancelled},
			StatusApproved:   {TransitionProgress: StatusInProgress},
			StatusInProgress: {TransitionDone: StatusDone},
		},
	},
	KindSupplier: {
		kind:    KindSupplier,
		initial: StatusRequested,
		edges: map[Status]map[Transition]Status{
			StatusRequested:  {TransitionProcess: StatusProcessing, TransitionCancel: StatusCancelled},
			StatusProcessing: {TransitionReceive: StatusReceived, TransitionCancel: StatusCancelled},
			StatusReceived:   {TransitionDone: StatusDone},
		},
	},
}

// LifecycleFor returns the status graph for kind
func LifecycleFor(kind Kind) (*Lifecycle, error) {
	l, ok := lifecycles[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown order kind %q", shared.ErrInvalidInput, kind)
	}
	return l, nil
}

// MustLifecycle is LifecycleFor for kinds known at compile time
func MustLifecycle(kind Kind) *Lifecycle {
	l, err := LifecycleFor(kind)
	if err != nil {
		panic(err)
	}
	return l
}

// Kind returns the order kind this graph belongs to
func (l *Lifecycle) Kind() Kind {
	return l.kind
}

// Initial returns the status new orders start in
func (l *Lifecycle) Initial() Status {
	return l.initial
}

// Target returns the status reached by applying t in from
func (l *Lifecycle) Target(from Status, t Transition) (Status, error) {
	if next, ok := l.edges[from][t]; ok {
		return next, nil
	}
	return "", shared.NewDomainError(ErrIllegalTransition.Code,
		fmt.Sprintf("cannot %s a %s order in status %s", t, l.kind, from))
}

// Can reports whether t is an edge out of from
func (l *Lifecycle) Can(from Status, t Transition) bool {
	_, ok := l.edges[from][t]
	return ok
}

// Allowed lists the transitions available from a status
func (l *Lifecycle) Allowed(from Status) []Transition {
	out := make([]Transition, 0)
	for _, t := range allTransitions {
		if l.Can(from, t) {
			out = append(out, t)
		}
	}
	return out
}

// IsTerminal reports whether no transition leaves s
func (l *Lifecycle) IsTerminal(s Status) bool {
	return len(l.edges[s]) == 0
}

// Reachable returns every status reachable from the initial status, initial included
func (l *Lifecycle) Reachable() map[Status]bool {
	seen := map[Status]bool{l.initial: true}
	queue := []Status{l.initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, t := range allTransitions {
			next, ok := l.edges[cur][t]
			if ok && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// Statuses returns the statuses this kind uses, in graph order
func (l *Lifecycle) Statuses() []Status {
	order := []Status{
		StatusDraft, StatusRequested, StatusProcessing, StatusShipped, StatusApproved,
		StatusInProgress, StatusReceived, StatusDone, StatusCancelled,
	}
	reach := l.Reachable()
	out := make([]Status, 0, len(reach))
	for _, s := range order {
		if reach[s] {
			out = append(out, s)
		}
	}
	return out
}
