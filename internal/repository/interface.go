package repository

import (
	"context"
	"errors"

	"github.com/hzj010427/YACA/internal/domain"
)

var (
	ErrUserExists      = errors.New("username already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Store is the persistence contract for users, messages, and replies. All
// returned values are independent copies; mutating them never affects stored
// state. Implementations: MemoryStore (volatile) and GormStore (durable).
type Store interface {
	Connect(ctx context.Context) error
	Init(ctx context.Context) error
	Close() error

	// Users
	SaveUser(ctx context.Context, user *domain.User) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAllUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, username string) (*domain.User, error)

	// Messages. SaveMessage creates the message or replaces an existing one
	// with the same id (reaction updates go through it).
	SaveMessage(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	FindMessageByID(ctx context.Context, id string) (*domain.ChatMessage, error)
	FindAllMessages(ctx context.Context) ([]*domain.ChatMessage, error)
	DeleteMessageByID(ctx context.Context, id string) (*domain.ChatMessage, error)
	DeleteMessagesByAuthor(ctx context.Context, author string) ([]*domain.ChatMessage, error)
	IncrementReplyCount(ctx context.Context, id string) (*domain.ChatMessage, error)

	// Replies
	SaveReply(ctx context.Context, reply *domain.Reply) (*domain.Reply, error)
	FindRepliesByMessageID(ctx context.Context, messageID string) ([]*domain.Reply, error)
}
