package fanout

import (
	"context"

	"github.com/hzj010427/YACA/internal/domain"
)

// LocalBus delivers events straight to the in-process hub. It is the default
// for single-instance deployments.
type LocalBus struct {
	broadcaster Broadcaster
}

func NewLocalBus(b Broadcaster) *LocalBus {
	return &LocalBus{broadcaster: b}
}

func (l *LocalBus) Publish(ctx context.Context, event *domain.Event) error {
	return l.broadcaster.BroadcastEvent(event)
}

func (l *LocalBus) Close() error { return nil }
