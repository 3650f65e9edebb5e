package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Transition outcomes
const (
	OutcomeApplied  = "applied"
	OutcomeRefused  = "refused"
	OutcomeIllegal  = "illegal"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// ProcurementMetrics records order transitions, numbering retries and report latency
type ProcurementMetrics struct {
	transitions        metric.Int64Counter
	transitionDuration metric.Float64Histogram
	numberRetries      metric.Int64Counter
	reportDuration     metric.Float64Histogram
}

// NewProcurementMetrics creates the instruments on meter
func NewProcurementMetrics(meter metric.Meter) (*ProcurementMetrics, error) {
	transitions, err := meter.Int64Counter("procurement.order.transitions",
		metric.WithDescription("Order transitions by kind, transition and outcome"),
		metric.WithUnit("{transition}"))
	if err != nil {
		return nil, err
	}
	transitionDuration, err := meter.Float64Histogram("procurement.order.transition.duration",
		metric.WithDescription("Time spent executing a transition"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	numberRetries, err := meter.Int64Counter("procurement.numbering.collisions",
		metric.WithDescription("Numbers rejected by the unique index"),
		metric.WithUnit("{collision}"))
	if err != nil {
		return nil, err
	}
	reportDuration, err := meter.Float64Histogram("procurement.report.duration",
		metric.WithDescription("Time spent computing a report"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &ProcurementMetrics{
		transitions:        transitions,
		transitionDuration: transitionDuration,
		numberRetries:      numberRetries,
		reportDuration:     reportDuration,
	}, nil
}

// RecordTransition counts one transition attempt
func (m *ProcurementMetrics) RecordTransition(ctx context.Context, kind, transition, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("transition", transition),
		attribute.String("outcome", outcome),
	)
	m.transitions.Add(ctx, 1, attrs)
	m.transitionDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

// RecordNumberCollision counts a duplicate number under prefix
func (m *ProcurementMetrics) RecordNumberCollision(ctx context.Context, prefix string) {
	if m == nil {
		return
	}
	m.numberRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("prefix", prefix)))
}

// RecordReport records how long report took
func (m *ProcurementMetrics) RecordReport(ctx context.Context, report string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.Record(ctx, float64(elapsed.Microseconds())/1000,
		metric.WithAttributes(attribute.String("report", report)))
}
