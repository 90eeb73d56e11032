package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ayush/todo-api/internal/apperr"
	"github.com/ayush/todo-api/internal/models"
)

// UserStore defines the interface for credential persistence.
//
// CreateUser fails with apperr.ErrDuplicateUsername when the username is
// taken. The lookups return (nil, nil) when no user matches.
type UserStore interface {
	CreateUser(ctx context.Context, username, hashedPw string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// TokenIssuer mints identity tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Service implements registration and login.
type Service struct {
	users  UserStore
	hasher Hasher
	tokens TokenIssuer

	// dummyHash is compared against when a login names an unknown user so
	// both failure paths pay the same hashing cost.
	dummyHash string
}

func NewService(users UserStore, hasher Hasher, tokens TokenIssuer) (*Service, error) {
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("dummy hash seed: %w", err)
	}
	dummy, err := hasher.Hash(hex.EncodeToString(seed))
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Service{users: users, hasher: hasher, tokens: tokens, dummyHash: dummy}, nil
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return apperr.Validation("username and password are required")
	}
	if len(password) > MaxPasswordBytes {
		return apperr.Validation(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// Register hashes the password and stores a new user.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if err := validateCredentials(username, req.Password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hashed)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a fresh token. Unknown users fail
// with apperr.ErrUserNotFound and wrong passwords with
// apperr.ErrInvalidCredentials; callers facing the network must not expose
// which one occurred.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return "", apperr.Validation("username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		s.hasher.Verify(req.Password, s.dummyHash)
		return "", apperr.ErrUserNotFound
	}
	if !s.hasher.Verify(req.Password, user.Password) {
		return "", apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Me returns the user behind an already verified identity.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrUserNotFound
	}
	return user, nil
}
