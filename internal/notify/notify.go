// Package notify publishes ledger events so out-of-process consumers (a
// notification worker, for instance) can react to expense and payment
// activity without coupling to the HTTP server.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies what happened in the ledger.
type EventType string

const (
	EventExpenseCreated   EventType = "expense.created"
	EventExpenseUpdated   EventType = "expense.updated"
	EventExpenseDeleted   EventType = "expense.deleted"
	EventPaymentCreated   EventType = "payment.created"
	EventPaymentConfirmed EventType = "payment.confirmed"
	EventPaymentRejected  EventType = "payment.rejected"
	EventPaymentCancelled EventType = "payment.cancelled"
)

// Event is the message published for every ledger mutation. Consumers fetch
// full entities by ID; the event carries only what routing needs.
type Event struct {
	Type         EventType `json:"type"`
	ColocationID string    `json:"colocation_id"`
	EntityID     string    `json:"entity_id"`
	ActorID      string    `json:"actor_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, colocationID, entityID, actorID string) *Event {
	return &Event{
		Type:         eventType,
		ColocationID: colocationID,
		EntityID:     entityID,
		ActorID:      actorID,
		Timestamp:    time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event from JSON bytes.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Dispatcher publishes ledger events. The service layer treats publishing as
// best-effort: a failed publish is logged, never surfaced to the client.
type Dispatcher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Noop is a Dispatcher that drops every event. Used when AMQP is not
// configured and in tests.
type Noop struct{}

func (Noop) Publish(context.Context, *Event) error { return nil }
func (Noop) Close() error                          { return nil }
