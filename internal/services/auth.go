package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/kushal-g/llm-chat-apiserver/internal/auth"
	"github.com/kushal-g/llm-chat-apiserver/internal/store"
	"github.com/kushal-g/llm-chat-apiserver/types"
)

var (
	ErrInvalidUsername = errors.New("username must be 3-20 characters and contain only letters, numbers, and underscores")
	ErrShortPassword   = errors.New("password must be at least 6 characters long")
	ErrMissingFields   = errors.New("username and password are required")
	ErrUsernameTaken   = errors.New("username already exists")

	// ErrInvalidCredentials is deliberately the same for an unknown
	// username and a wrong password, so Login cannot be used to probe
	// which usernames exist.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrIncorrectPassword is returned only by the unified Auth flow,
	// where the client has to distinguish "wrong password" from
	// "new account created".
	ErrIncorrectPassword = errors.New("incorrect password")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// Auth flow outcomes.
const (
	ActionLogin  = "login"
	ActionSignup = "signup"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// AuthResult is the outcome of a successful unified auth call.
type AuthResult struct {
	User        types.User
	AccessToken string
	Action      string
}

// AuthService encapsulates signup, login, unified auth, and token refresh.
type AuthService struct {
	repo   UserRepository
	tokens *auth.TokenService
}

func NewAuthService(repo UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Signup creates a new account. No token is issued on this path.
func (s *AuthService) Signup(ctx context.Context, username, password string) (types.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return types.User{}, err
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return types.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("checking username: %w", err)
	}

	return s.createUser(ctx, username, password)
}

// Login verifies credentials and returns the identity. No token is issued
// on this path; the unified Auth flow is the token-issuing entry point.
func (s *AuthService) Login(ctx context.Context, username, password string) (types.User, error) {
	if username == "" || password == "" {
		return types.User{}, ErrMissingFields
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("looking up user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Auth is the unified signup-or-login flow. A known username with the
// right password logs in; an unknown username is auto-registered. Both
// outcomes issue a token.
func (s *AuthService) Auth(ctx context.Context, username, password string) (AuthResult, error) {
	if err := validateCredentials(username, password); err != nil {
		return AuthResult{}, err
	}

	user, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if !auth.VerifyPassword(password, user.PasswordHash) {
			return AuthResult{}, ErrIncorrectPassword
		}
		token, err := s.tokens.Issue(user.ID, user.Username)
		if err != nil {
			return AuthResult{}, fmt.Errorf("issuing token: %w", err)
		}
		return AuthResult{User: user, AccessToken: token, Action: ActionLogin}, nil

	case errors.Is(err, store.ErrNotFound):
		user, err := s.createUser(ctx, username, password)
		if err != nil {
			return AuthResult{}, err
		}
		token, err := s.tokens.Issue(user.ID, user.Username)
		if err != nil {
			return AuthResult{}, fmt.Errorf("issuing token: %w", err)
		}
		return AuthResult{User: user, AccessToken: token, Action: ActionSignup}, nil

	default:
		return AuthResult{}, fmt.Errorf("looking up user: %w", err)
	}
}

// Refresh exchanges a still-valid token for a fresh one.
func (s *AuthService) Refresh(token string) (string, error) {
	return s.tokens.Refresh(token)
}

func (s *AuthService) createUser(ctx context.Context, username, password string) (types.User, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		ID:           newUserID(),
		Username:     username,
		PasswordHash: hashed,
	})
	if err != nil {
		return types.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingFields
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	if len(password) < 6 {
		return ErrShortPassword
	}
	return nil
}

func newUserID() string {
	return fmt.Sprintf("USER_%d_%s", time.Now().UnixMilli(), uuid.NewString())
}
