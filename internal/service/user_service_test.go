package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hzj010427/YACA/internal/domain"
	"github.com/hzj010427/YACA/pkg/response"
)

func appErrorName(t *testing.T, err error) string {
	t.Helper()
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr), "expected an app error, got %v", err)
	return appErr.Name
}

func TestRegisterHashesPassword(t *testing.T) {
	env := newTestEnv(t)

	user := env.register(t, "jane@x.com", "Abc1!", "Jane")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "jane@x.com", user.Username)
	assert.Equal(t, "Jane", user.DisplayName)
	assert.NotEqual(t, "Abc1!", user.Password, "plaintext must never be stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Abc1!")))
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane@x.com", "Abc1!", "Jane")

	_, err := env.users.Register(context.Background(), &domain.RegisterRequest{
		Credentials: domain.Credentials{Username: "jane@x.com", Password: "Xyz9#"},
		Extra:       "Second Jane",
	})
	assert.Equal(t, "UserExists", appErrorName(t, err))
}

func TestRegisterValidatesBeforeStoring(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Register(context.Background(), &domain.RegisterRequest{
		Credentials: domain.Credentials{Username: "jane@x.com", Password: "nope"},
		Extra:       "Jane",
	})
	assert.Equal(t, "InvalidPassword", appErrorName(t, err))

	usernames, err := env.users.ListUsernames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, usernames, "a rejected registration must leave no record")
}

func TestLoginIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane@x.com", "Abc1!", "Jane")

	payload, err := env.users.Login(context.Background(), "jane@x.com", "Abc1!")
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, "jane@x.com", payload.User.Username)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane@x.com", "Abc1!", "Jane")

	_, err := env.users.Login(context.Background(), "nobody@x.com", "Abc1!")
	assert.Equal(t, "UserNotFound", appErrorName(t, err))

	_, err = env.users.Login(context.Background(), "jane@x.com", "Wrong1!")
	assert.Equal(t, "IncorrectPassword", appErrorName(t, err))

	_, err = env.users.Login(context.Background(), "jane@x.com", "")
	assert.Equal(t, "MissingPassword", appErrorName(t, err))

	_, err = env.users.Login(context.Background(), "", "Abc1!")
	assert.Equal(t, "MissingUsername", appErrorName(t, err))
}

func TestListUsernames(t *testing.T) {
	env := newTestEnv(t)

	usernames, err := env.users.ListUsernames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, usernames)

	env.register(t, "jane@x.com", "Abc1!", "Jane")
	env.register(t, "bob@x.com", "Abc1!", "Bob")

	usernames, err = env.users.ListUsernames(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"jane@x.com", "bob@x.com"}, usernames)
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane@x.com", "Abc1!", "Jane")

	user, err := env.users.GetUser(context.Background(), "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.DisplayName)

	_, err = env.users.GetUser(context.Background(), "nobody@x.com")
	assert.Equal(t, "UserNotFound", appErrorName(t, err))
}

func TestDeleteUserCascadesMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "jane@x.com", "Abc1!", "Jane")
	env.register(t, "bob@x.com", "Abc1!", "Bob")

	janeMsg, err := env.chat.PostMessage(ctx, "jane@x.com", "mine")
	require.NoError(t, err)
	_, err = env.chat.PostMessage(ctx, "bob@x.com", "keep me")
	require.NoError(t, err)

	// A reply under Jane's message survives her deletion.
	_, err = env.chat.PostReply(ctx, janeMsg.ID, "bob@x.com", "still here")
	require.NoError(t, err)

	deleted, err := env.users.DeleteUser(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", deleted.Username)

	_, err = env.users.GetUser(ctx, "jane@x.com")
	assert.Equal(t, "UserNotFound", appErrorName(t, err))

	msgs, err := env.chat.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "bob@x.com", msgs[0].Author)

	replies, err := env.chat.ListReplies(ctx, janeMsg.ID)
	require.NoError(t, err)
	assert.Len(t, replies, 1, "orphaned replies are preserved")

	assert.Contains(t, env.bus.names(), domain.EventDeletedChatMessages)
}

func TestDeleteUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.DeleteUser(context.Background(), "nobody@x.com")
	assert.Equal(t, "UserNotFound", appErrorName(t, err))
}
