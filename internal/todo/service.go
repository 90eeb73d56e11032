package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ayush/todo-api/internal/apperr"
	"github.com/ayush/todo-api/internal/models"
)

// ErrExportDisabled is returned by the export operations when no archive is
// configured.
var ErrExportDisabled = errors.New("todo export is not configured")

// Store defines the interface for todo persistence. Lookups match on both
// id and owner; a mismatch reads as (nil, nil) or false.
type Store interface {
	Insert(ctx context.Context, todo models.Todo) (*models.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error)
	GetByOwner(ctx context.Context, ownerID, id string) (*models.Todo, error)
	Update(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}

// Archive defines the interface for export snapshot storage.
type Archive interface {
	PutSnapshot(ctx context.Context, ownerID string, data []byte) error
	GetSnapshot(ctx context.Context, ownerID string) ([]byte, error)
}

// Service applies validation and owner scoping to todo operations.
type Service struct {
	store   Store
	archive Archive
}

// NewService returns a Service. archive may be nil.
func NewService(store Store, archive Archive) *Service {
	return &Service{store: store, archive: archive}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("title is required")
	}
	return title, nil
}

// Create stores a new todo for ownerID. Completed defaults to false.
func (s *Service) Create(ctx context.Context, ownerID string, req models.CreateTodoRequest) (*models.Todo, error) {
	title, err := normalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}
	todo := models.Todo{UserID: ownerID, Title: title}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	return s.store.Insert(ctx, todo)
}

// List returns every todo owned by ownerID.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.Todo, error) {
	todos, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return todos, nil
}

// Get returns ownerID's todo, or nil when there is no match.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	return s.store.GetByOwner(ctx, ownerID, id)
}

// Update changes only the fields present in patch. It returns nil when id
// does not name one of ownerID's todos.
func (s *Service) Update(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Title != nil {
		title, err := normalizeTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	return s.store.Update(ctx, ownerID, id, patch)
}

// Delete reports whether one of ownerID's todos was removed.
func (s *Service) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	return s.store.Delete(ctx, ownerID, id)
}

// Export snapshots ownerID's todos into the archive and returns the
// snapshot.
func (s *Service) Export(ctx context.Context, ownerID string) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrExportDisabled
	}
	todos, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.archive.PutSnapshot(ctx, ownerID, data); err != nil {
		return nil, err
	}
	return data, nil
}

// LatestExport returns the last archived snapshot, or nil if there is none.
func (s *Service) LatestExport(ctx context.Context, ownerID string) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrExportDisabled
	}
	return s.archive.GetSnapshot(ctx, ownerID)
}
