package session

import (
	"context"

	"github.com/patrickmn/go-cache"
)

const memStoreKey = "generation-sessions"

// MemoryStore keeps the session list in process memory. Useful for tests and
// for hosts that treat history as disposable.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Load(ctx context.Context) ([]GenerationSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if val, ok := s.cache.Get(memStoreKey); ok {
		if sessions, ok := val.([]GenerationSession); ok {
			out := make([]GenerationSession, len(sessions))
			copy(out, sessions)
			return out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Save(ctx context.Context, sessions []GenerationSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]GenerationSession, len(sessions))
	copy(stored, sessions)
	s.cache.Set(memStoreKey, stored, cache.NoExpiration)
	return nil
}

var _ Store = (*MemoryStore)(nil)
