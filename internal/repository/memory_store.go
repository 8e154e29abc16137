package repository

import (
	"context"
	"sync"

	"github.com/hzj010427/YACA/internal/domain"
)

// MemoryStore is the volatile in-process Store. It is not persistent, but is
// behaviorally equivalent to GormStore and useful for early development and
// tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*domain.User        // username -> user
	messages map[string]*domain.ChatMessage // id -> message
	order    []string                       // message ids in insertion order
	replies  map[string][]*domain.Reply     // messageID -> replies in insertion order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.reset()
	return s
}

func (s *MemoryStore) reset() {
	s.users = make(map[string]*domain.User)
	s.messages = make(map[string]*domain.ChatMessage)
	s.order = nil
	s.replies = make(map[string][]*domain.Reply)
}

func (s *MemoryStore) Connect(ctx context.Context) error { return nil }

func (s *MemoryStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) SaveUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return nil, ErrUserExists
	}
	stored := copyUser(user)
	s.users[stored.Username] = stored
	return copyUser(stored), nil
}

func (s *MemoryStore) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *MemoryStore) FindAllUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	return users, nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	delete(s.users, username)
	return copyUser(user), nil
}

func (s *MemoryStore) SaveMessage(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyMessage(msg)
	if _, exists := s.messages[stored.ID]; !exists {
		s.order = append(s.order, stored.ID)
	}
	s.messages[stored.ID] = stored
	return copyMessage(stored), nil
}

func (s *MemoryStore) FindMessageByID(ctx context.Context, id string) (*domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	return copyMessage(msg), nil
}

func (s *MemoryStore) FindAllMessages(ctx context.Context) ([]*domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]*domain.ChatMessage, 0, len(s.messages))
	for _, id := range s.order {
		if msg, ok := s.messages[id]; ok {
			msgs = append(msgs, copyMessage(msg))
		}
	}
	return msgs, nil
}

func (s *MemoryStore) DeleteMessageByID(ctx context.Context, id string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	delete(s.messages, id)
	s.dropFromOrder(id)
	return copyMessage(msg), nil
}

func (s *MemoryStore) DeleteMessagesByAuthor(ctx context.Context, author string) ([]*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []*domain.ChatMessage
	for _, id := range s.order {
		msg, ok := s.messages[id]
		if !ok || msg.Author != author {
			continue
		}
		deleted = append(deleted, copyMessage(msg))
		delete(s.messages, id)
	}
	for _, msg := range deleted {
		s.dropFromOrder(msg.ID)
	}
	return deleted, nil
}

func (s *MemoryStore) IncrementReplyCount(ctx context.Context, id string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	msg.ReplyCount++
	return copyMessage(msg), nil
}

func (s *MemoryStore) SaveReply(ctx context.Context, reply *domain.Reply) (*domain.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyReply(reply)
	s.replies[stored.MessageID] = append(s.replies[stored.MessageID], stored)
	return copyReply(stored), nil
}

func (s *MemoryStore) FindRepliesByMessageID(ctx context.Context, messageID string) ([]*domain.Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	replies := s.replies[messageID]
	out := make([]*domain.Reply, 0, len(replies))
	for _, r := range replies {
		out = append(out, copyReply(r))
	}
	return out, nil
}

func (s *MemoryStore) dropFromOrder(id string) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	return &cp
}

func copyMessage(m *domain.ChatMessage) *domain.ChatMessage {
	cp := *m
	if m.Reactions != nil {
		cp.Reactions = append([]domain.Reaction(nil), m.Reactions...)
	}
	return &cp
}

func copyReply(r *domain.Reply) *domain.Reply {
	cp := *r
	return &cp
}
