package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/todo-api/internal/models"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// CachedTodoStore is a read-through Redis cache over a TodoStore's owner
// listings. Each owner has a generation counter at todos:gen:<owner> and
// lists are cached under todos:<owner>:<gen>. Writers bump the generation
// after a successful write, so a list read that raced a write can only fill
// a key nobody reads again. Redis failures are logged and never fail the
// request.
type CachedTodoStore struct {
	next TodoStore
	rdb  redis.Cmdable
	ttl  time.Duration

	mu    sync.Mutex
	stale map[string]struct{} // owners whose generation bump failed
}

func NewCachedTodoStore(next TodoStore, rdb redis.Cmdable, ttl time.Duration) *CachedTodoStore {
	return &CachedTodoStore{next: next, rdb: rdb, ttl: ttl, stale: make(map[string]struct{})}
}

func genKey(ownerID string) string {
	return "todos:gen:" + ownerID
}

func listKey(ownerID string, gen int64) string {
	return "todos:" + ownerID + ":" + strconv.FormatInt(gen, 10)
}

func (s *CachedTodoStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error) {
	gen, ok := s.generation(ctx, ownerID)
	if !ok {
		return s.next.ListByOwner(ctx, ownerID)
	}
	key := listKey(ownerID, gen)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var todos []models.Todo
		if err := json.Unmarshal(raw, &todos); err == nil {
			return todos, nil
		}
		log.Printf("cache: corrupt entry %s, refetching", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("cache: get %s: %v", key, err)
	}

	todos, err := s.next.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(todos); err == nil {
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			log.Printf("cache: set %s: %v", key, err)
		}
	}
	return todos, nil
}

// generation returns the owner's current list generation. It reports false
// when the cache must be bypassed: the counter is unreadable, or an earlier
// bump failed and still cannot be replayed.
func (s *CachedTodoStore) generation(ctx context.Context, ownerID string) (int64, bool) {
	s.mu.Lock()
	_, stale := s.stale[ownerID]
	s.mu.Unlock()
	if stale && !s.bump(ctx, ownerID) {
		return 0, false
	}

	gen, err := s.rdb.Get(ctx, genKey(ownerID)).Int64()
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		log.Printf("cache: get %s: %v", genKey(ownerID), err)
		return 0, false
	}
}

func (s *CachedTodoStore) GetByOwner(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	return s.next.GetByOwner(ctx, ownerID, id)
}

func (s *CachedTodoStore) Insert(ctx context.Context, todo models.Todo) (*models.Todo, error) {
	out, err := s.next.Insert(ctx, todo)
	if err == nil {
		s.bump(ctx, todo.UserID)
	}
	return out, err
}

func (s *CachedTodoStore) Update(ctx context.Context, ownerID, id string, patch models.TodoPatch) (*models.Todo, error) {
	out, err := s.next.Update(ctx, ownerID, id, patch)
	if err == nil && out != nil {
		s.bump(ctx, ownerID)
	}
	return out, err
}

func (s *CachedTodoStore) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	deleted, err := s.next.Delete(ctx, ownerID, id)
	if err == nil && deleted {
		s.bump(ctx, ownerID)
	}
	return deleted, err
}

// bump advances the owner's generation. On failure the owner is marked stale
// and reads skip the cache until a later bump succeeds.
func (s *CachedTodoStore) bump(ctx context.Context, ownerID string) bool {
	err := s.rdb.Incr(ctx, genKey(ownerID)).Err()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Printf("cache: invalidate %s: %v", ownerID, err)
		s.stale[ownerID] = struct{}{}
		return false
	}
	delete(s.stale, ownerID)
	return true
}
