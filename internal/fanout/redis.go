package fanout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hzj010427/YACA/internal/config"
	"github.com/hzj010427/YACA/internal/domain"
	"github.com/hzj010427/YACA/pkg/log"
)

// RedisBus publishes fan-out events to a Redis channel and mirrors everything
// received on that channel into the local hub, so several server instances
// share one fan-out audience.
type RedisBus struct {
	client      *redis.Client
	channel     string
	broadcaster Broadcaster
	cancel      context.CancelFunc
}

// NewRedisBus connects to Redis and starts the subscriber loop.
func NewRedisBus(cfg config.RedisConfig, channel string, b Broadcaster) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	bus := &RedisBus{
		client:      client,
		channel:     channel,
		broadcaster: b,
		cancel:      cancel,
	}
	go bus.subscribe(subCtx)

	return bus, nil
}

// Publish sends the event to the shared channel. Local delivery happens when
// the subscription loop receives it back.
func (r *RedisBus) Publish(ctx context.Context, event *domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

func (r *RedisBus) subscribe(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldEvent, r.channel).Msg("dropping undecodable fan-out event")
				continue
			}
			if err := r.broadcaster.BroadcastEvent(&event); err != nil {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldEvent, event.Event).Msg("failed to broadcast fan-out event")
			}
		}
	}
}

func (r *RedisBus) Close() error {
	r.cancel()
	return r.client.Close()
}
