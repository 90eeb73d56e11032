package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayush/todo-api/internal/apperr"
	"github.com/ayush/todo-api/internal/models"
)

// MemoryStore keeps users and todos in process memory. It satisfies both the
// credential and todo store contracts and is meant for local runs and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]models.User // by id
	byUsername map[string]string      // username -> id
	todos      map[string]models.Todo
	order      []string // todo ids in insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]models.User),
		byUsername: make(map[string]string),
		todos:      make(map[string]models.Todo),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, username, hashedPassword string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[username]; taken {
		return nil, apperr.ErrDuplicateUsername
	}
	u := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  hashedPassword,
		CreatedAt: time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.byUsername[username] = u.ID
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, nil
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// UserCount reports how many users are stored.
func (s *MemoryStore) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *MemoryStore) Insert(_ context.Context, todo models.Todo) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo.ID = uuid.NewString()
	s.todos[todo.ID] = todo
	s.order = append(s.order, todo.ID)
	return &todo, nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := []models.Todo{}
	for _, id := range s.order {
		if t := s.todos[id]; t.UserID == ownerID {
			todos = append(todos, t)
		}
	}
	return todos, nil
}

// owned returns the todo only when it exists and belongs to ownerID.
// Callers hold s.mu.
func (s *MemoryStore) owned(ownerID, id string) (models.Todo, bool) {
	t, ok := s.todos[id]
	if !ok || t.UserID != ownerID {
		return models.Todo{}, false
	}
	return t, true
}

func (s *MemoryStore) GetByOwner(_ context.Context, ownerID, id string) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.owned(ownerID, id)
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemoryStore) Update(_ context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.owned(ownerID, id)
	if !ok {
		return nil, nil
	}
	patch.Apply(&t)
	s.todos[id] = t
	return &t, nil
}

func (s *MemoryStore) Delete(_ context.Context, ownerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(ownerID, id); !ok {
		return false, nil
	}
	delete(s.todos, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return true, nil
}
