package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erp/procurement/internal/domain/trade"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Notifier delivers a rendered message
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log. It is the delivery used until a real channel exists.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

// Notify logs msg
func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.logger.Info(msg.Title,
		zap.String("recipient_id", msg.RecipientID.String()),
		zap.String("branch_id", msg.BranchID.String()),
		zap.String("body", msg.Body),
	)
	return nil
}

// Processor handles status change tasks on the worker side
type Processor struct {
	codec     EventCodec
	formatter *Formatter
	notifier  Notifier
	logger    *zap.Logger
}

// NewProcessor creates a Processor
func NewProcessor(codec EventCodec, formatter *Formatter, notifier Notifier, logger *zap.Logger) *Processor {
	return &Processor{codec: codec, formatter: formatter, notifier: notifier, logger: logger.Named("notification_worker")}
}

// HandleStatusChanged decodes the task and notifies the requester.
// Payloads that cannot be decoded are not retried.
func (p *Processor) HandleStatusChanged(ctx context.Context, t *asynq.Task) error {
	var env Envelope
	if err := json.Unmarshal(t.Payload(), &env); err != nil {
		return fmt.Errorf("decode envelope: %v: %w", err, asynq.SkipRetry)
	}
	event, err := p.codec.Deserialize(env.EventType, env.Data)
	if err != nil {
		return fmt.Errorf("decode event %s: %v: %w", env.EventID, err, asynq.SkipRetry)
	}
	changed, ok := event.(*trade.OrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %s: %w", env.EventType, asynq.SkipRetry)
	}

	if err := p.notifier.Notify(ctx, p.formatter.StatusChanged(changed)); err != nil {
		p.logger.Warn("notify failed", zap.String("event_id", env.EventID), zap.Error(err))
		return err
	}
	return nil
}

// Register adds the processor's handlers to mux
func (p *Processor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeStatusChanged, p.HandleStatusChanged)
}
