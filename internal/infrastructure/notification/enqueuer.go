package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskQueue is satisfied by *asynq.Client
type TaskQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer is an event handler that puts status changes on the queue.
// It runs after the transition committed, so a failure here never undoes one.
type Enqueuer struct {
	queue     TaskQueue
	codec     EventCodec
	queueName string
	maxRetry  int
	logger    *zap.Logger
}

// NewEnqueuer creates an Enqueuer
func NewEnqueuer(queue TaskQueue, codec EventCodec, queueName string, maxRetry int, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{
		queue:     queue,
		codec:     codec,
		queueName: queueName,
		maxRetry:  maxRetry,
		logger:    logger.Named("notification"),
	}
}

// Handle enqueues one task per event. The event ID doubles as the task ID
// so a republished event is not delivered twice.
func (e *Enqueuer) Handle(ctx context.Context, event shared.DomainEvent) error {
	task, err := NewStatusChangedTask(e.codec, event)
	if err != nil {
		return err
	}
	info, err := e.queue.EnqueueContext(ctx, task,
		asynq.Queue(e.queueName),
		asynq.MaxRetry(e.maxRetry),
		asynq.TaskID(event.EventID().String()),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		e.logger.Debug("notification already queued", zap.String("event_id", event.EventID().String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", event.EventType(), err)
	}
	e.logger.Debug("notification queued",
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
		zap.String("aggregate_id", event.AggregateID().String()),
	)
	return nil
}

// EventTypes returns the status change event type
func (e *Enqueuer) EventTypes() []string {
	return []string{trade.EventTypeOrderStatusChanged}
}

var _ shared.EventHandler = (*Enqueuer)(nil)
