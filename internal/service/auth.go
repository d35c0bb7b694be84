package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"catbox/internal/auth"
	"catbox/internal/logging"
	"catbox/internal/model"
	"catbox/internal/repository"
)

// SessionManager issues, verifies and revokes session tokens.
// *auth.Manager is the production implementation.
type SessionManager interface {
	Issue(userID string) (*auth.Session, error)
	Verify(token string) (string, error)
	Revoke(token string)
}

// AuthService is the gateway every authenticated operation goes through.
type AuthService interface {
	// Register creates a user and returns its id.
	Register(ctx context.Context, username, password string) (string, error)

	// Authenticate checks credentials and issues a new session.
	Authenticate(ctx context.Context, username, password string) (*auth.Session, error)

	// RequireSession resolves a session token to the user id it belongs to.
	RequireSession(ctx context.Context, token string) (string, error)

	// EndSession invalidates a token. It never fails.
	EndSession(ctx context.Context, token string)
}

// AuthConfig carries the tunables of the auth service.
type AuthConfig struct {
	BcryptCost int
	Logger     logging.Logger
}

type authService struct {
	users    repository.UserRepository
	sessions SessionManager
	cost     int
	log      logging.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, sessions SessionManager, cfg AuthConfig) AuthService {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &authService{users: users, sessions: sessions, cost: cfg.BcryptCost, log: log}
}

func (s *authService) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if len(password) > auth.MaxPasswordBytes {
		return "", fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, auth.MaxPasswordBytes)
	}

	hash, err := auth.HashPassword(password, s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrDuplicateUsername
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	s.log.Info(ctx, "user_registered", "user_id", u.ID)
	return u.ID, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*auth.Session, error) {
	if len(password) > auth.MaxPasswordBytes {
		auth.BurnComparison(password[:auth.MaxPasswordBytes])
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.BurnComparison(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	sess, err := s.sessions.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return sess, nil
}

func (s *authService) RequireSession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	uid, err := s.sessions.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return uid, nil
}

func (s *authService) EndSession(ctx context.Context, token string) {
	if token == "" {
		return
	}
	s.sessions.Revoke(token)
}
