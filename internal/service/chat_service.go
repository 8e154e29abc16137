package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hzj010427/YACA/internal/domain"
	"github.com/hzj010427/YACA/internal/fanout"
	"github.com/hzj010427/YACA/internal/repository"
	"github.com/hzj010427/YACA/pkg/log"
	"github.com/hzj010427/YACA/pkg/response"
)

type chatServiceImpl struct {
	store repository.Store
	bus   fanout.Bus
}

// NewChatService creates the chat service.
func NewChatService(store repository.Store, bus fanout.Bus) ChatService {
	return &chatServiceImpl{store: store, bus: bus}
}

func newID() string {
	return uuid.New().String()
}

// PostMessage persists a new message. The caller has already verified that
// the author resolves to a registered user; the display name is denormalized
// here and stays as it was at post time.
func (s *chatServiceImpl) PostMessage(ctx context.Context, author, text string) (*domain.ChatMessage, error) {
	l := log.Ctx(ctx)

	displayName := ""
	if user, err := s.store.FindUserByUsername(ctx, author); err == nil {
		displayName = user.DisplayName
	}

	msg := &domain.ChatMessage{
		ID:          newID(),
		Author:      author,
		Text:        text,
		DisplayName: displayName,
		Timestamp:   time.Now(),
		Reactions:   []domain.Reaction{},
	}

	saved, err := s.store.SaveMessage(ctx, msg)
	if err != nil {
		l.Error().Err(err).Msg("failed to save chat message")
		return nil, response.NewServerError("PostRequestFailure", "Failed to post chat message")
	}

	s.publish(ctx, domain.NewEvent(domain.EventNewChatMessage, saved))
	return saved, nil
}

// ListMessages returns every message in insertion order.
func (s *chatServiceImpl) ListMessages(ctx context.Context) ([]*domain.ChatMessage, error) {
	msgs, err := s.store.FindAllMessages(ctx)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list chat messages")
		return nil, response.NewServerError("GetRequestFailure", "Failed to retrieve chat messages")
	}
	return msgs, nil
}

func (s *chatServiceImpl) DeleteMessage(ctx context.Context, id string) (*domain.ChatMessage, error) {
	deleted, err := s.store.DeleteMessageByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, response.NewClientError("MessageNotFound",
				"Cannot delete a message that does not exist")
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldMessageID, id).Msg("failed to delete chat message")
		return nil, response.NewServerError("DeleteRequestFailure", "Failed to delete chat message")
	}

	s.publish(ctx, domain.NewEvent(domain.EventDeletedChatMessage, deleted))
	return deleted, nil
}

// DeleteMessagesByAuthor bulk-deletes one author's messages and fans out the
// deleted set. Replies attached to deleted messages are left in place.
func (s *chatServiceImpl) DeleteMessagesByAuthor(ctx context.Context, author string) ([]*domain.ChatMessage, error) {
	deleted, err := s.store.DeleteMessagesByAuthor(ctx, author)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to delete chat messages by author")
		return nil, response.NewServerError("DeleteRequestFailure", "Failed to delete chat messages")
	}

	if len(deleted) > 0 {
		s.publish(ctx, domain.NewEvent(domain.EventDeletedChatMessages, deleted))
	}
	return deleted, nil
}

// ToggleReaction applies toggle semantics: a reaction with the same
// (author, type) pair is removed, otherwise the reaction is appended.
func (s *chatServiceImpl) ToggleReaction(ctx context.Context, messageID string, reaction domain.Reaction) (*domain.ChatMessage, error) {
	msg, err := s.store.FindMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, response.NewClientError("OrphanedReaction",
				"Cannot add reaction to non-existent message")
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to load message for reaction")
		return nil, response.NewServerError("PatchRequestFailure", "Failed to update reaction")
	}

	if !reaction.Type.Valid() {
		return nil, response.NewClientError("InvalidReactionType", "Invalid reaction type")
	}

	toggledOff := false
	kept := msg.Reactions[:0]
	for _, r := range msg.Reactions {
		if r.Author == reaction.Author && r.Type == reaction.Type {
			toggledOff = true
			continue
		}
		kept = append(kept, r)
	}
	msg.Reactions = kept
	if !toggledOff {
		msg.Reactions = append(msg.Reactions, reaction)
	}

	updated, err := s.store.SaveMessage(ctx, msg)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to save reaction update")
		return nil, response.NewServerError("PatchRequestFailure", "Failed to update reaction")
	}

	s.publish(ctx, domain.NewEvent(domain.EventUpdatedChatMessage, updated))
	return updated, nil
}

// PostReply attaches a reply to an existing message and then bumps the
// message's reply counter as a separate step. The two writes are not atomic
// with each other; each triggers its own fan-out event.
func (s *chatServiceImpl) PostReply(ctx context.Context, messageID, author, text string) (*domain.Reply, error) {
	l := log.Ctx(ctx)

	if _, err := s.store.FindMessageByID(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, response.NewClientError("OrphanedReply",
				"Cannot add reply to non-existent message")
		}
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to load message for reply")
		return nil, response.NewServerError("PostRequestFailure", "Failed to post reply")
	}

	displayName := ""
	if user, err := s.store.FindUserByUsername(ctx, author); err == nil {
		displayName = user.DisplayName
	}

	reply := &domain.Reply{
		ID:          newID(),
		MessageID:   messageID,
		Author:      author,
		Text:        text,
		DisplayName: displayName,
		Timestamp:   time.Now(),
	}

	saved, err := s.store.SaveReply(ctx, reply)
	if err != nil {
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to save reply")
		return nil, response.NewServerError("PostRequestFailure", "Failed to post reply")
	}
	s.publish(ctx, domain.NewEvent(domain.EventNewReply, saved))

	updated, err := s.store.IncrementReplyCount(ctx, messageID)
	if err != nil {
		// The reply is already persisted; an undercounted message is the
		// accepted failure mode here.
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to increment reply count")
		return saved, nil
	}
	s.publish(ctx, domain.NewEvent(domain.EventUpdatedChatMessage, updated))

	return saved, nil
}

// ListReplies returns all replies for a message in insertion order.
func (s *chatServiceImpl) ListReplies(ctx context.Context, messageID string) ([]*domain.Reply, error) {
	replies, err := s.store.FindRepliesByMessageID(ctx, messageID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldMessageID, messageID).Msg("failed to list replies")
		return nil, response.NewServerError("GetRequestFailure", "Failed to get replies for message")
	}
	return replies, nil
}

// publish fans the event out; delivery failures are logged, never surfaced,
// because the mutation already committed.
func (s *chatServiceImpl) publish(ctx context.Context, event *domain.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldEvent, event.Event).Msg("fan-out publish failed")
	}
}
