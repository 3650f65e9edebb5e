package event

import (
	"github.com/erp/procurement/internal/domain/trade"
)

// NewDomainSerializer returns a serializer that knows every event the service emits
func NewDomainSerializer() *Serializer {
	s := NewSerializer()
	s.Register(trade.EventTypeOrderStatusChanged, &trade.OrderStatusChangedEvent{})
	return s
}
