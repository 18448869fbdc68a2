// Package notify delivers "ledger changed" events to observers.
//
// The ledger store calls a Notifier once for every committed operation.
// Delivery is best effort, a failing Notifier never rolls back the
// operation that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event signals that the ledger state has changed.
type Event struct {
	ID        uuid.UUID `json:"id" example:"1e777d24-3f5b-4c43-8000-04f65f895578"` // Unique ID of the event, usable for de-duplication
	URI       string    `json:"uri" example:"ledger://envelopes"`                  // Identifier of the changed resource
	Operation string    `json:"operation" example:"deposit"`                       // The operation that caused the change
	Time      time.Time `json:"time" example:"2024-01-07T18:43:00.271152Z"`        // Time of the commit
}

// NewEvent returns an Event with a fresh ID.
func NewEvent(uri, operation string) Event {
	return Event{
		ID:        uuid.New(),
		URI:       uri,
		Operation: operation,
		Time:      time.Now().In(time.UTC),
	}
}

// JSON returns the JSON encoding of the event.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is the hook called after a committed ledger operation.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Func adapts an ordinary function to the Notifier interface.
type Func func(ctx context.Context, event Event) error

func (f Func) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error {
	return nil
}

// Multi sends each event to all of its notifiers.
//
// All notifiers are called even if one of them fails, the errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
