package store

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ayush/todo-api/internal/apperr"
	"github.com/ayush/todo-api/internal/models"
)

// TodoStore is the owner-scoped todo persistence contract. Every lookup
// matches on both the todo id and the owner id; a todo owned by someone else
// is reported exactly like a missing one: (nil, nil) or false.
type TodoStore interface {
	Insert(ctx context.Context, todo models.Todo) (*models.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error)
	GetByOwner(ctx context.Context, ownerID, id string) (*models.Todo, error)
	Update(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}

// classify wraps a driver error, marking transient faults as retryable.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return apperr.Wrap(apperr.KindStoreUnavailable, "store unavailable", fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error) bool {
	var netErr net.Error
	var connErr *pgconn.ConnectError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.As(err, &connErr):
		return true
	case pgconn.Timeout(err), pgconn.SafeToRetry(err):
		return true
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return true
	case errors.As(err, &netErr):
		return true
	}
	return false
}
