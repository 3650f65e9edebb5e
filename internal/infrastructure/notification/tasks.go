// Package notification moves order status changes onto an asynq queue and
// turns them into messages for the people involved.
package notification

import (
	"encoding/json"
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/hibiken/asynq"
)

// TaskTypeStatusChanged is the asynq task type for order status changes
const TaskTypeStatusChanged = "order:status_changed"

// Envelope is the task payload: the serialized event and its type
type Envelope struct {
	EventType string          `json:"event_type"`
	EventID   string          `json:"event_id"`
	Data      json.RawMessage `json:"data"`
}

// EventCodec is the part of the event serializer the queue needs
type EventCodec interface {
	Serialize(event shared.DomainEvent) ([]byte, error)
	Deserialize(eventType string, data []byte) (shared.DomainEvent, error)
}

// NewStatusChangedTask wraps event in a task
func NewStatusChangedTask(codec EventCodec, event shared.DomainEvent) (*asynq.Task, error) {
	data, err := codec.Serialize(event)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", event.EventType(), err)
	}
	payload, err := json.Marshal(Envelope{
		EventType: event.EventType(),
		EventID:   event.EventID().String(),
		Data:      data,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeStatusChanged, payload), nil
}
