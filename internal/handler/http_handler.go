package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hzj010427/YACA/internal/domain"
	"github.com/hzj010427/YACA/internal/service"
	"github.com/hzj010427/YACA/pkg/log"
	"github.com/hzj010427/YACA/pkg/middleware"
	"github.com/hzj010427/YACA/pkg/response"
)

// Handler maps the REST surface onto the domain services.
type Handler struct {
	users service.UserService
	chat  service.ChatService
	auth  *middleware.AuthMiddleware
}

// NewHandler creates the HTTP handler.
func NewHandler(users service.UserService, chat service.ChatService, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{users: users, chat: chat, auth: auth}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/users", h.Register)
		auth.POST("/tokens/:username", h.Login)
	}

	chat := r.Group("/chat")
	chat.Use(h.auth.RequireAuth())
	{
		chat.GET("/messages", h.GetAllMessages)
		chat.POST("/messages", h.PostMessage)
		chat.PATCH("/messages/:messageId/reactions", h.UpdateReaction)
		chat.DELETE("/messages/:messageId", h.DeleteMessage)
		chat.POST("/messages/:messageId/replies", h.PostReply)
		chat.GET("/messages/:messageId/replies", h.GetReplies)
		chat.GET("/users", h.GetAllUsers)
		chat.GET("/users/:username", h.GetUser)
		chat.DELETE("/users/:username", h.DeleteUser)
	}
}

// Register handles user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.NewClientError("InvalidRequest", "Malformed request body"))
		return
	}

	user, err := h.users.Register(ctx, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, "UserRegistered",
		fmt.Sprintf("User %s registered successfully", user.Username), user)
}

// Login handles token issuance.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.NewClientError("InvalidRequest", "Malformed request body"))
		return
	}

	payload, err := h.users.Login(ctx, username, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, "UserAuthenticated",
		fmt.Sprintf("User %s logged in successfully", username), payload)
}

// GetAllMessages returns the full chat history in insertion order.
func (h *Handler) GetAllMessages(c *gin.Context) {
	msgs, err := h.chat.ListMessages(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	if len(msgs) == 0 {
		response.OK(c, "NoChatMessagesYet", "There are no chat messages yet.", []*domain.ChatMessage{})
		return
	}
	response.OK(c, "ChatMessagesFound", "All chat messages retrieved successfully", msgs)
}

// PostMessage validates the request, binds it to the authenticated identity,
// and posts the message.
func (h *Handler) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.NewClientError("InvalidRequest", "Malformed request body"))
		return
	}

	if strings.TrimSpace(req.Author) == "" {
		response.Fail(c, response.NewClientError("MissingAuthor", "The author of the chat message is missing"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		response.Fail(c, response.NewClientError("MissingChatText", "The chat message is empty"))
		return
	}

	// Orphan check before posting: the author must be a registered user.
	if _, err := h.users.GetUser(ctx, req.Author); err != nil {
		response.Fail(c, response.NewAuthError("OrphanedChatMessage", "An orphaned message is not permitted"))
		return
	}

	if !middleware.IdentityMatches(c, req.Author) {
		response.Fail(c, response.NewAuthError("UnauthorizedRequest",
			"Posting a chat message on behalf of another User is not permitted"))
		return
	}

	msg, err := h.chat.PostMessage(ctx, req.Author, req.Text)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, "ChatMessageCreated", "Chat message posted successfully", msg)
}

// UpdateReaction toggles a reaction on a message.
func (h *Handler) UpdateReaction(c *gin.Context) {
	ctx := c.Request.Context()
	messageID := c.Param("messageId")

	var req domain.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.NewClientError("InvalidRequest", "Malformed request body"))
		return
	}

	if !middleware.IdentityMatches(c, req.Author) {
		response.Fail(c, response.NewAuthError("UnauthorizedRequest",
			"Reacting on behalf of another User is not permitted"))
		return
	}

	msg, err := h.chat.ToggleReaction(ctx, messageID, domain.Reaction{Author: req.Author, Type: req.Type})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, "ReactionUpdated", "Reaction updated successfully", msg)
}

// DeleteMessage retracts a single message.
func (h *Handler) DeleteMessage(c *gin.Context) {
	msg, err := h.chat.DeleteMessage(c.Request.Context(), c.Param("messageId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, "MessageDeleted", "Message deleted successfully", msg)
}

// PostReply attaches a reply to a message.
func (h *Handler) PostReply(c *gin.Context) {
	ctx := c.Request.Context()
	messageID := c.Param("messageId")

	var req domain.PostReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.NewClientError("InvalidRequest", "Malformed request body"))
		return
	}

	if strings.TrimSpace(req.Author) == "" {
		response.Fail(c, response.NewClientError("MissingAuthor", "The author of the reply is missing"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		response.Fail(c, response.NewClientError("MissingChatText", "The reply is empty"))
		return
	}

	if !middleware.IdentityMatches(c, req.Author) {
		response.Fail(c, response.NewAuthError("UnauthorizedRequest",
			"Posting a reply on behalf of another User is not permitted"))
		return
	}

	reply, err := h.chat.PostReply(ctx, messageID, req.Author, req.Text)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, "ReplyCreated", "Reply posted successfully", reply)
}

// GetReplies lists replies for a message.
func (h *Handler) GetReplies(c *gin.Context) {
	replies, err := h.chat.ListReplies(c.Request.Context(), c.Param("messageId"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	if len(replies) == 0 {
		response.OK(c, "NoRepliesYet", "There are no replies to this message yet.", []*domain.Reply{})
		return
	}
	response.OK(c, "RepliesFound", "All replies retrieved successfully", replies)
}

// GetAllUsers lists registered usernames. The payload is usernames only, not
// full user records.
func (h *Handler) GetAllUsers(c *gin.Context) {
	usernames, err := h.users.ListUsernames(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	name := "UsersFound"
	if len(usernames) == 0 {
		name = "NoUsersYet"
		usernames = []string{}
	}
	response.OK(c, name, "All users retrieved successfully", usernames)
}

// GetUser fetches one user record.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, "UserFound", "User found successfully", user)
}

// DeleteUser removes an account and cascades deletion of its messages.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	deleted, err := h.users.DeleteUser(ctx, username)
	if err != nil {
		response.Fail(c, err)
		return
	}

	l := log.Ctx(ctx)
	l.Info().Str(log.FieldUsername, username).Msg("user deleted with message cascade")
	response.OK(c, "UserDeleted", "User deleted successfully", deleted)
}
