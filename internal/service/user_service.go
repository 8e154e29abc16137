package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hzj010427/YACA/internal/audit"
	"github.com/hzj010427/YACA/internal/domain"
	"github.com/hzj010427/YACA/internal/repository"
	"github.com/hzj010427/YACA/pkg/jwt"
	"github.com/hzj010427/YACA/pkg/log"
	"github.com/hzj010427/YACA/pkg/response"
)

type userServiceImpl struct {
	store  repository.Store
	tokens *jwt.Manager
	chat   ChatService
}

// NewUserService creates the user service. The chat service handles the
// message cascade on account deletion.
func NewUserService(store repository.Store, tokens *jwt.Manager, chat ChatService) UserService {
	return &userServiceImpl{store: store, tokens: tokens, chat: chat}
}

// Register validates the request, hashes the password, and persists the new
// user. Validation runs entirely before the store is touched.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	l := log.Ctx(ctx)

	if err := domain.ValidateRegistration(req); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Credentials.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, response.NewServerError("FailedRegistration", "Failed to register user")
	}

	user := &domain.User{
		ID:          newID(),
		Username:    req.Credentials.Username,
		Password:    string(hashed),
		DisplayName: req.Extra,
	}

	saved, err := s.store.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, response.NewClientError("UserExists",
				"The email supplied belongs to an already-registered user")
		}
		l.Error().Err(err).Msg("failed to save user")
		return nil, response.NewServerError("FailedRegistration", "Failed to register user")
	}

	audit.Log(ctx, audit.ActionRegister, saved.Username, "user registered")
	return saved, nil
}

// Login verifies credentials and issues a signed token embedding the
// username.
func (s *userServiceImpl) Login(ctx context.Context, username, password string) (*domain.AuthPayload, error) {
	l := log.Ctx(ctx)

	creds := domain.Credentials{Username: username, Password: password}
	if err := domain.ValidateCredentialsPresent(&creds); err != nil {
		return nil, err
	}

	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, username, "unknown user", "login failed")
			return nil, response.NewClientError("UserNotFound", "User not found")
		}
		l.Error().Err(err).Msg("failed to look up user")
		return nil, response.NewServerError("FailedAuthentication", "Failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, username, "wrong password", "login failed")
		return nil, response.NewClientError("IncorrectPassword", "Incorrect password")
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		l.Error().Err(err).Msg("failed to sign token")
		return nil, response.NewServerError("FailedAuthentication", "Failed to log in")
	}

	audit.Log(ctx, audit.ActionLogin, user.Username, "user logged in")
	return &domain.AuthPayload{Token: token, User: user}, nil
}

// ListUsernames returns all registered usernames.
func (s *userServiceImpl) ListUsernames(ctx context.Context) ([]string, error) {
	users, err := s.store.FindAllUsers(ctx)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list users")
		return nil, response.NewServerError("GetRequestFailure", "Failed to retrieve users")
	}

	usernames := make([]string, 0, len(users))
	for _, u := range users {
		usernames = append(usernames, u.Username)
	}
	return usernames, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, response.NewClientError("UserNotFound",
				fmt.Sprintf("User %s not found", username))
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to get user")
		return nil, response.NewServerError("GetRequestFailure", "Failed to retrieve user")
	}
	return user, nil
}

// DeleteUser removes the account after cascading deletion of its messages.
// The two steps are not atomic with each other; the message cascade commits
// first.
func (s *userServiceImpl) DeleteUser(ctx context.Context, username string) (*domain.User, error) {
	if _, err := s.chat.DeleteMessagesByAuthor(ctx, username); err != nil {
		return nil, err
	}

	deleted, err := s.store.DeleteUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, response.NewClientError("UserNotFound",
				"Cannot delete a user that does not exist")
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to delete user")
		return nil, response.NewServerError("DeleteRequestFailure", "Failed to delete user")
	}

	audit.Log(ctx, audit.ActionDeleteAccount, username, "account deleted")
	return deleted, nil
}
