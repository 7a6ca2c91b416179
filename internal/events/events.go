package events

//go:generate mockgen -source=events.go -destination=mocks/mock_events.go -package=mocks Publisher

import (
	"context"
	"time"
)

// Event types
const (
	TypeParticipantRegistered = "participant.registered"
	TypeWinnerDrawn           = "draw.winner_drawn"
)

// Event is the envelope written to the event stream
type Event struct {
	Type       string            `json:"type"`
	Key        string            `json:"key"`
	OccurredAt time.Time         `json:"occurredAt"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Publisher publishes giveaway events.
// Publish failures never roll back the operation that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// NoopPublisher discards every event. Used when no brokers are configured.
type NoopPublisher struct{}

// Compile-time check to ensure NoopPublisher implements the interface
var _ Publisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() {}
