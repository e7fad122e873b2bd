package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// HandleStore persists the cart handle issued by the platform. Absence of a
// stored handle is a normal state (first visit), not an error. The single
// fixed key per profile guarantees at most one active handle at a time.
type HandleStore interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, handle string) error
}

type redisHandleStore struct {
	redisClient *redis.Client
	key         string
}

func NewRedisHandleStore(redisClient *redis.Client, profile string) HandleStore {
	return &redisHandleStore{
		redisClient: redisClient,
		key:         "storefront:cart:handle:" + profile,
	}
}

func (s *redisHandleStore) Load(ctx context.Context) (string, bool, error) {
	val, err := s.redisClient.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil // No cart created yet
		}
		return "", false, fmt.Errorf("failed to load cart handle: %w", err)
	}
	return val, true, nil
}

func (s *redisHandleStore) Save(ctx context.Context, handle string) error {
	err := s.redisClient.Set(ctx, s.key, handle, 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to save cart handle: %w", err)
	}
	return nil
}

// MemoryHandleStore keeps the handle in process memory. Used by tests and as
// a throwaway profile.
type MemoryHandleStore struct {
	mu     sync.Mutex
	handle string
	ok     bool
}

func NewMemoryHandleStore() *MemoryHandleStore {
	return &MemoryHandleStore{}
}

func (s *MemoryHandleStore) Load(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle, s.ok, nil
}

func (s *MemoryHandleStore) Save(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = handle
	s.ok = true
	return nil
}
