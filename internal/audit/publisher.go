package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sink receives finished events. Implementations: in-memory store (tests,
// local runs) and Kafka (production).
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps and forwards events. It is append-only and delegates
// persistence to the sink so tests can swap it out.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.sink.Append(ctx, event)
}
