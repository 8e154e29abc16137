package fanout

import (
	"context"

	"github.com/hzj010427/YACA/internal/domain"
)

// Broadcaster delivers an event to the locally connected audience. The hub
// implements it.
type Broadcaster interface {
	BroadcastEvent(event *domain.Event) error
}

// Bus publishes fan-out events after a successful domain mutation. The local
// bus feeds the hub directly; the Redis bus additionally mirrors events
// across instances.
type Bus interface {
	Publish(ctx context.Context, event *domain.Event) error
	Close() error
}
