package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/todo-api/internal/apperr"
	"github.com/ayush/todo-api/internal/models"
	"github.com/ayush/todo-api/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MemoryStore, *TokenService) {
	t.Helper()
	users := store.NewMemoryStore()
	tokens := NewTokenService("test-secret")
	svc, err := NewService(users, NewBcryptHasher(bcrypt.MinCost), tokens)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, users, tokens
}

func TestService_RegisterThenLogin(t *testing.T) {
	svc, _, tokens := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		username string
		password string
	}{
		{"alice", "pw1"},
		{"bob", "correct horse battery staple"},
		{"carol_99", strings.Repeat("x", MaxPasswordBytes)},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			user, err := svc.Register(ctx, models.RegisterRequest{Username: tt.username, Password: tt.password})
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if user.Password == tt.password {
				t.Fatal("Register() stored the plaintext password")
			}

			token, err := svc.Login(ctx, models.LoginRequest{Username: tt.username, Password: tt.password})
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			userID, err := tokens.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if userID != user.ID {
				t.Errorf("token identity = %q, want %q", userID, user.ID)
			}
		})
	}
}

func TestService_RegisterDuplicate(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw2"})
	if !errors.Is(err, apperr.ErrDuplicateUsername) {
		t.Errorf("Register() error = %v, want ErrDuplicateUsername", err)
	}
	if users.UserCount() != 1 {
		t.Errorf("UserCount() = %d, want 1", users.UserCount())
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc, users, _ := newTestService(t)

	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"empty username", models.RegisterRequest{Password: "pw"}},
		{"blank username", models.RegisterRequest{Username: "   ", Password: "pw"}},
		{"empty password", models.RegisterRequest{Username: "alice"}},
		{"password too long", models.RegisterRequest{Username: "alice", Password: strings.Repeat("x", MaxPasswordBytes+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Register() error = %v, want validation error", err)
			}
		})
	}
	if users.UserCount() != 0 {
		t.Errorf("UserCount() = %d, want 0", users.UserCount())
	}
}

func TestService_LoginFailures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		req     models.LoginRequest
		wantErr error
	}{
		{"unknown user", models.LoginRequest{Username: "mallory", Password: "pw1"}, apperr.ErrUserNotFound},
		{"wrong password", models.LoginRequest{Username: "alice", Password: "pw2"}, apperr.ErrInvalidCredentials},
		{"missing password", models.LoginRequest{Username: "alice"}, apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if token != "" {
				t.Error("Login() returned a token on failure")
			}
		})
	}
}

type failingUsers struct{}

func (failingUsers) CreateUser(context.Context, string, string) (*models.User, error) {
	return nil, apperr.Wrap(apperr.KindStoreUnavailable, "store unavailable", context.DeadlineExceeded)
}

func (failingUsers) GetUserByUsername(context.Context, string) (*models.User, error) {
	return nil, apperr.Wrap(apperr.KindStoreUnavailable, "store unavailable", context.DeadlineExceeded)
}

func (failingUsers) GetUserByID(context.Context, string) (*models.User, error) {
	return nil, apperr.Wrap(apperr.KindStoreUnavailable, "store unavailable", context.DeadlineExceeded)
}

func TestService_StoreUnavailableIsRetryable(t *testing.T) {
	svc, err := NewService(failingUsers{}, NewBcryptHasher(bcrypt.MinCost), NewTokenService("s"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw"})
	if !apperr.Retryable(err) {
		t.Errorf("Register() error = %v, want retryable", err)
	}
	_, err = svc.Login(ctx, models.LoginRequest{Username: "alice", Password: "pw"})
	if !apperr.Retryable(err) {
		t.Errorf("Login() error = %v, want retryable", err)
	}
}

func TestService_Me(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "pw1"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Me(ctx, user.ID)
	if err != nil || got.Username != "alice" {
		t.Errorf("Me() = %+v, %v", got, err)
	}
	if _, err := svc.Me(ctx, "gone"); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Errorf("Me(gone) error = %v, want ErrUserNotFound", err)
	}
}
