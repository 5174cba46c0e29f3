package ledger

import (
	"github.com/zsmartex/rampx/mq_client"
)

// EventPublisher receives one typed outbound event per committed state
// transition. Events are emitted after the transaction commits, never
// inside it.
type EventPublisher interface {
	EnqueueEvent(kind string, id string, event string, payload []byte) error
}

// StreamPublisher publishes to the AMQP events exchange.
type StreamPublisher struct{}

func (StreamPublisher) EnqueueEvent(kind string, id string, event string, payload []byte) error {
	return mq_client.EnqueueEvent(kind, id, event, payload)
}

type pendingEvent struct {
	kind    string
	id      string
	event   string
	payload []byte
}
