package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hzj010427/YACA/internal/domain"
	"github.com/hzj010427/YACA/internal/repository"
	"github.com/hzj010427/YACA/internal/service"
	"github.com/hzj010427/YACA/pkg/jwt"
	"github.com/hzj010427/YACA/pkg/middleware"
	"github.com/hzj010427/YACA/pkg/response"
)

type noopBus struct{}

func (noopBus) Publish(ctx context.Context, event *domain.Event) error { return nil }
func (noopBus) Close() error                                           { return nil }

type testServer struct {
	engine *gin.Engine
	tokens *jwt.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	require.NoError(t, store.Init(context.Background()))

	tokens := jwt.NewManager("test-secret", time.Hour, "yaca-test")
	chat := service.NewChatService(store, noopBus{})
	users := service.NewUserService(store, tokens, chat)

	engine := gin.New()
	NewHandler(users, chat, middleware.NewAuthMiddleware(tokens)).RegisterRoutes(engine)

	return &testServer{engine: engine, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) registerAndLogin(t *testing.T, username, displayName string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/auth/users", "", gin.H{
		"credentials": gin.H{"username": username, "password": "Abc1!"},
		"extra":       displayName,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/auth/tokens/"+username, "", gin.H{"password": "Abc1!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Name    string `json:"name"`
		Payload struct {
			Token string `json:"token"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotEmpty(t, env.Payload.Token)
	return env.Payload.Token
}

func decodeSuccess(t *testing.T, w *httptest.ResponseRecorder) (string, json.RawMessage) {
	t.Helper()
	var env struct {
		Name    string          `json:"name"`
		Message string          `json:"message"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Name, env.Payload
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *response.AppError {
	t.Helper()
	var appErr response.AppError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appErr))
	return &appErr
}

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/users", "", gin.H{
		"credentials": gin.H{"username": "jane@x.com", "password": "Abc1!"},
		"extra":       "Jane",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	name, payload := decodeSuccess(t, w)
	assert.Equal(t, "UserRegistered", name)

	var user domain.User
	require.NoError(t, json.Unmarshal(payload, &user))
	assert.Equal(t, "jane@x.com", user.Username)
	assert.NotEqual(t, "Abc1!", user.Password)
}

func TestRegisterEndpointValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/users", "", gin.H{
		"credentials": gin.H{"username": "not-an-email", "password": "Abc1!"},
		"extra":       "Jane",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	appErr := decodeError(t, w)
	assert.Equal(t, response.TypeClientError, appErr.Type)
	assert.Equal(t, "InvalidEmail", appErr.Name)
}

func TestLoginEndpointFailures(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "jane@x.com", "Jane")

	w := s.do(t, http.MethodPost, "/auth/tokens/jane@x.com", "", gin.H{"password": "Wrong1!"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "IncorrectPassword", decodeError(t, w).Name)

	w = s.do(t, http.MethodPost, "/auth/tokens/nobody@x.com", "", gin.H{"password": "Abc1!"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UserNotFound", decodeError(t, w).Name)
}

func TestChatRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/chat/messages", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MissingToken", decodeError(t, w).Name)

	w = s.do(t, http.MethodGet, "/chat/messages", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "InvalidToken", decodeError(t, w).Name)
}

func TestPostAndListMessages(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "jane@x.com", "Jane")

	w := s.do(t, http.MethodGet, "/chat/messages", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	name, _ := decodeSuccess(t, w)
	assert.Equal(t, "NoChatMessagesYet", name)

	w = s.do(t, http.MethodPost, "/chat/messages", token, gin.H{
		"author": "jane@x.com", "text": "hi",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	name, payload := decodeSuccess(t, w)
	assert.Equal(t, "ChatMessageCreated", name)

	var msg domain.ChatMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "Jane", msg.DisplayName)

	w = s.do(t, http.MethodGet, "/chat/messages", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	name, payload = decodeSuccess(t, w)
	assert.Equal(t, "ChatMessagesFound", name)

	var msgs []domain.ChatMessage
	require.NoError(t, json.Unmarshal(payload, &msgs))
	assert.Len(t, msgs, 1)
}

func TestPostMessageFieldChecks(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "jane@x.com", "Jane")

	w := s.do(t, http.MethodPost, "/chat/messages", token, gin.H{"text": "hi"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MissingAuthor", decodeError(t, w).Name)

	w = s.do(t, http.MethodPost, "/chat/messages", token, gin.H{"author": "jane@x.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MissingChatText", decodeError(t, w).Name)
}

func TestPostMessageOrphanedAuthor(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "jane@x.com", "Jane")

	w := s.do(t, http.MethodPost, "/chat/messages", token, gin.H{
		"author": "ghost@x.com", "text": "boo",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "OrphanedChatMessage", decodeError(t, w).Name)
}

func TestPostMessageImpersonation(t *testing.T) {
	s := newTestServer(t)
	janeToken := s.registerAndLogin(t, "jane@x.com", "Jane")
	s.registerAndLogin(t, "bob@x.com", "Bob")

	// Jane's token, Bob's name. Bob is registered, so this fails on identity.
	w := s.do(t, http.MethodPost, "/chat/messages", janeToken, gin.H{
		"author": "bob@x.com", "text": "hi",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UnauthorizedRequest", decodeError(t, w).Name)
}

func TestReactionEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "jane@x.com", "Jane")

	w := s.do(t, http.MethodPost, "/chat/messages", token, gin.H{
		"author": "jane@x.com", "text": "hi",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	_, payload := decodeSuccess(t, w)
	var msg domain.ChatMessage
	require.NoError(t, json.Unmarshal(payload, &msg))

	path := "/chat/messages/" + msg.ID + "/reactions"

	w = s.do(t, http.MethodPatch, path, token, gin.H{"author": "jane@x.com", "type": "like"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	name, payload := decodeSuccess(t, w)
	assert.Equal(t, "ReactionUpdated", name)

	var updated domain.ChatMessage
	require.NoError(t, json.Unmarshal(payload, &updated))
	require.Len(t, updated.Reactions, 1)

	// Same pair toggles it back off.
	w = s.do(t, http.MethodPatch, path, token, gin.H{"author": "jane@x.com", "type": "like"})
	require.Equal(t, http.StatusOK, w.Code)
	_, payload = decodeSuccess(t, w)
	require.NoError(t, json.Unmarshal(payload, &updated))
	assert.Empty(t, updated.Reactions)

	w = s.do(t, http.MethodPatch, path, token, gin.H{"author": "jane@x.com", "type": "shrug"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidReactionType", decodeError(t, w).Name)

	w = s.do(t, http.MethodPatch, "/chat/messages/missing/reactions", token,
		gin.H{"author": "jane@x.com", "type": "like"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "OrphanedReaction", decodeError(t, w).Name)
}

func TestReplyEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "jane@x.com", "Jane")

	w := s.do(t, http.MethodPost, "/chat/messages", token, gin.H{
		"author": "jane@x.com", "text": "hi",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	_, payload := decodeSuccess(t, w)
	var msg domain.ChatMessage
	require.NoError(t, json.Unmarshal(payload, &msg))

	repliesPath := "/chat/messages/" + msg.ID + "/replies"

	w = s.do(t, http.MethodGet, repliesPath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	name, _ := decodeSuccess(t, w)
	assert.Equal(t, "NoRepliesYet", name)

	w = s.do(t, http.MethodPost, repliesPath, token, gin.H{
		"author": "jane@x.com", "text": "following up",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	name, payload = decodeSuccess(t, w)
	assert.Equal(t, "ReplyCreated", name)

	var reply domain.Reply
	require.NoError(t, json.Unmarshal(payload, &reply))
	assert.Equal(t, msg.ID, reply.MessageID)

	w = s.do(t, http.MethodGet, repliesPath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	name, payload = decodeSuccess(t, w)
	assert.Equal(t, "RepliesFound", name)

	var replies []domain.Reply
	require.NoError(t, json.Unmarshal(payload, &replies))
	assert.Len(t, replies, 1)

	w = s.do(t, http.MethodPost, "/chat/messages/missing/replies", token, gin.H{
		"author": "jane@x.com", "text": "into the void",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "OrphanedReply", decodeError(t, w).Name)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "jane@x.com", "Jane")

	w := s.do(t, http.MethodGet, "/chat/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	name, payload := decodeSuccess(t, w)
	assert.Equal(t, "UsersFound", name)

	// Usernames only, never full records.
	var usernames []string
	require.NoError(t, json.Unmarshal(payload, &usernames))
	assert.Equal(t, []string{"jane@x.com"}, usernames)

	w = s.do(t, http.MethodGet, "/chat/users/jane@x.com", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	name, _ = decodeSuccess(t, w)
	assert.Equal(t, "UserFound", name)

	w = s.do(t, http.MethodGet, "/chat/users/ghost@x.com", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UserNotFound", decodeError(t, w).Name)
}

func TestDeleteUserEndpointCascades(t *testing.T) {
	s := newTestServer(t)
	janeToken := s.registerAndLogin(t, "jane@x.com", "Jane")
	bobToken := s.registerAndLogin(t, "bob@x.com", "Bob")

	w := s.do(t, http.MethodPost, "/chat/messages", janeToken, gin.H{
		"author": "jane@x.com", "text": "mine",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodDelete, "/chat/users/jane@x.com", janeToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	name, _ := decodeSuccess(t, w)
	assert.Equal(t, "UserDeleted", name)

	w = s.do(t, http.MethodGet, "/chat/messages", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	name, _ = decodeSuccess(t, w)
	assert.Equal(t, "NoChatMessagesYet", name)
}

func TestDeleteMessageEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "jane@x.com", "Jane")

	w := s.do(t, http.MethodPost, "/chat/messages", token, gin.H{
		"author": "jane@x.com", "text": "hi",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	_, payload := decodeSuccess(t, w)
	var msg domain.ChatMessage
	require.NoError(t, json.Unmarshal(payload, &msg))

	w = s.do(t, http.MethodDelete, "/chat/messages/"+msg.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	name, _ := decodeSuccess(t, w)
	assert.Equal(t, "MessageDeleted", name)

	w = s.do(t, http.MethodDelete, "/chat/messages/"+msg.ID, token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MessageNotFound", decodeError(t, w).Name)
}
