package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
)

// DefaultMaxAttempts bounds the scan and retry loop
const DefaultMaxAttempts = 1000

// ErrDuplicate is returned by a persist callback when the number is already taken
var ErrDuplicate = shared.NewDomainError("DUPLICATE_NUMBER", "Number already in use")

// Store reads the highest sequence issued under a stem, soft-deleted rows included
type Store interface {
	MaxSequence(ctx context.Context, stem string) (int, error)
}

// Request names the series a number is drawn from
type Request struct {
	Prefix string
	Scope  string
	At     time.Time
}

// PersistFunc stores the candidate number. It returns ErrDuplicate when a unique index rejects it.
type PersistFunc func(ctx context.Context, number string) error

// Generator hands out collision-free numbers without a dedicated sequence
type Generator struct {
	store       Store
	maxAttempts int
	now         func() time.Time
	onCollision func(ctx context.Context, prefix string)
}

// Option configures a Generator
type Option func(*Generator)

// WithMaxAttempts overrides DefaultMaxAttempts
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithCollisionHook is called every time persist rejects a candidate as a duplicate
func WithCollisionHook(fn func(ctx context.Context, prefix string)) Option {
	return func(g *Generator) {
		g.onCollision = fn
	}
}

// NewGenerator creates a generator backed by store
func NewGenerator(store Store, opts ...Option) *Generator {
	g := &Generator{store: store, maxAttempts: DefaultMaxAttempts, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Assign finds the next free number and hands it to persist until one sticks.
// After maxAttempts duplicates it falls back to a time-derived suffix.
func (g *Generator) Assign(ctx context.Context, req Request, persist PersistFunc) (string, error) {
	if req.Prefix == "" || req.Scope == "" {
		return "", shared.NewDomainError("INVALID_NUMBER_REQUEST", "Prefix and scope are required")
	}
	at := req.At
	if at.IsZero() {
		at = g.now()
	}
	stem := Stem(req.Prefix, req.Scope, Period(at))

	last := 0
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		maxSeq, err := g.store.MaxSequence(ctx, stem)
		if err != nil {
			return "", fmt.Errorf("scan sequence for %s: %w", stem, err)
		}
		seq := max(maxSeq, last) + 1
		number := Number{Prefix: req.Prefix, Scope: req.Scope, Period: Period(at), Seq: seq}.String()
		err = persist(ctx, number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return "", err
		}
		if g.onCollision != nil {
			g.onCollision(ctx, req.Prefix)
		}
		last = seq
	}

	number := stem + g.now().Format("150405.000000000")
	if err := persist(ctx, number); err != nil {
		return "", fmt.Errorf("fallback number %s: %w", number, err)
	}
	return number, nil
}
