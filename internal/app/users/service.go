package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"starwarsapi/internal/models"
	"starwarsapi/internal/store"
)

// ErrUnauthorized is returned by Verify when the credential does not resolve
// to an active user.
var ErrUnauthorized = errors.New("unauthorized")

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, email, password string) (int64, error)
	Authenticate(ctx context.Context, email, password string) (int64, error)
	User(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Tokens issues and parses bearer tokens.
type Tokens interface {
	Issue(userID int64) (string, time.Time, error)
	Parse(token string) (int64, error)
}

// Service exposes account workflows and credential verification.
type Service interface {
	Signup(ctx context.Context, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (string, error)
	Verify(ctx context.Context, token string) (int64, error)
	Get(ctx context.Context, id int64) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type service struct {
	store  Store
	tokens Tokens
}

// New wires a Service backed by the provided Store and token manager.
func New(store Store, tokens Tokens) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Signup(ctx context.Context, email, password string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.CreateUser(ctx, email, password)
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userID, err := s.store.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	token, _, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Verify resolves a bearer token to the id of an existing, active user.
func (s *service) Verify(ctx context.Context, token string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	user, err := s.store.User(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return 0, ErrUnauthorized
		}
		return 0, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return 0, ErrUnauthorized
	}
	return user.ID, nil
}

func (s *service) Get(ctx context.Context, id int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.User(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}
