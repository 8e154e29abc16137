package service

import (
	"context"

	"github.com/hzj010427/YACA/internal/domain"
)

// UserService covers registration, authentication, and account removal.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.AuthPayload, error)
	ListUsernames(ctx context.Context) ([]string, error)
	GetUser(ctx context.Context, username string) (*domain.User, error)
	// DeleteUser removes the account and cascades deletion of every message
	// the user authored. Replies to those messages are preserved.
	DeleteUser(ctx context.Context, username string) (*domain.User, error)
}

// ChatService covers messages, reactions, and replies. Every successful
// mutation triggers its fan-out event.
type ChatService interface {
	PostMessage(ctx context.Context, author, text string) (*domain.ChatMessage, error)
	ListMessages(ctx context.Context) ([]*domain.ChatMessage, error)
	DeleteMessage(ctx context.Context, id string) (*domain.ChatMessage, error)
	DeleteMessagesByAuthor(ctx context.Context, author string) ([]*domain.ChatMessage, error)
	ToggleReaction(ctx context.Context, messageID string, reaction domain.Reaction) (*domain.ChatMessage, error)
	PostReply(ctx context.Context, messageID, author, text string) (*domain.Reply, error)
	ListReplies(ctx context.Context, messageID string) ([]*domain.Reply, error)
}
