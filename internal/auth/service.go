package auth

import (
	"context"
	"errors"
	"fmt"
)

// userStore abstracts the credential persistence layer.
type userStore interface {
	FindUserByEmail(ctx context.Context, email string) (User, error)
}

// Service orchestrates the login flow: credential lookup, password
// verification, and token issuance.
type Service struct {
	store  userStore
	tokens *TokenService
}

// NewService creates a Service with dependencies.
func NewService(store userStore, tokens *TokenService) *Service {
	return &Service{store: store, tokens: tokens}
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the issued token and the public user view.
type LoginResult struct {
	Token string
	User  PublicUser
}

// Login authenticates credentials and issues a bearer token. A missing
// account and a wrong password are reported as distinct expected failures;
// everything else is an internal error.
func (s *Service) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	user, err := s.store.FindUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}

	if !VerifyPassword(input.Password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID.String(), user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	return LoginResult{Token: token, User: user.Public()}, nil
}
