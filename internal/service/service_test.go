package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hzj010427/YACA/internal/domain"
	"github.com/hzj010427/YACA/internal/repository"
	"github.com/hzj010427/YACA/pkg/jwt"
)

// recordingBus captures published events so tests can assert on fan-out
// behavior without a hub or Redis.
type recordingBus struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (b *recordingBus) Publish(ctx context.Context, event *domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Event)
	}
	return out
}

func (b *recordingBus) last() *domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	return b.events[len(b.events)-1]
}

type testEnv struct {
	store *repository.MemoryStore
	bus   *recordingBus
	users UserService
	chat  ChatService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	require.NoError(t, store.Init(context.Background()))

	bus := &recordingBus{}
	chat := NewChatService(store, bus)
	tokens := jwt.NewManager("test-secret", time.Hour, "yaca-test")
	users := NewUserService(store, tokens, chat)

	return &testEnv{store: store, bus: bus, users: users, chat: chat}
}

func (e *testEnv) register(t *testing.T, username, password, displayName string) *domain.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), &domain.RegisterRequest{
		Credentials: domain.Credentials{Username: username, Password: password},
		Extra:       displayName,
	})
	require.NoError(t, err)
	return user
}
