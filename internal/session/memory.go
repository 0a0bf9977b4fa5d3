package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

var _ Store = (*MemoryStore)(nil)

type entry struct {
	mu      sync.Mutex
	session *domain.Session
}

// MemoryStore keeps at most capacity sessions, evicting the least recently
// used. Sessions idle for longer than ttl expire; a zero ttl disables expiry.
type MemoryStore struct {
	cache *lru.Cache[string, *entry]
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore(capacity int, ttl time.Duration, log zerolog.Logger) (*MemoryStore, error) {
	s := &MemoryStore{
		ttl: ttl,
		now: time.Now,
		log: log.With().Str("component", "session").Logger(),
	}
	cache, err := lru.NewWithEvict[string, *entry](capacity, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

func (s *MemoryStore) onEvict(id string, e *entry) {
	e.mu.Lock()
	index := e.session.Index
	e.mu.Unlock()

	if index != nil {
		if err := index.Close(context.Background()); err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("failed to release session index")
		}
	}
	s.log.Debug().Str("session_id", id).Msg("session evicted")
}

func (s *MemoryStore) Create(ctx context.Context, index *domain.VectorIndex) (string, error) {
	if index == nil {
		return "", domain.ErrMissingRequiredField
	}
	now := s.now()
	for {
		id := uuid.NewString()
		e := &entry{session: &domain.Session{
			ID:         id,
			Index:      index,
			CreatedAt:  now,
			LastAccess: now,
		}}
		if exists, _ := s.cache.ContainsOrAdd(id, e); !exists {
			s.log.Info().Str("session_id", id).Int("segments", index.Len()).Msg("session created")
			return id, nil
		}
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var out *domain.Session
	err := s.withEntry(id, func(e *entry) {
		out = e.session.Snapshot()
	})
	return out, err
}

func (s *MemoryStore) Append(ctx context.Context, id string, ex domain.Exchange) ([]domain.Exchange, error) {
	var history []domain.Exchange
	err := s.withEntry(id, func(e *entry) {
		e.session.History = append(e.session.History, ex)
		history = append([]domain.Exchange(nil), e.session.History...)
	})
	return history, err
}

func (s *MemoryStore) Evict(ctx context.Context, id string) error {
	if !s.cache.Remove(id) {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	return s.cache.Len(), nil
}

// Sweep removes every expired session and returns how many were removed.
func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	removed := 0
	for _, id := range s.cache.Keys() {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		e, ok := s.cache.Peek(id)
		if !ok {
			continue
		}
		e.mu.Lock()
		expired := s.expired(e.session)
		e.mu.Unlock()
		if expired && s.cache.Remove(id) {
			removed++
		}
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("expired sessions swept")
	}
	return removed, nil
}

// withEntry runs fn with the entry locked and its access time refreshed.
func (s *MemoryStore) withEntry(id string, fn func(e *entry)) error {
	e, ok := s.cache.Get(id)
	if !ok {
		return domain.ErrSessionNotFound
	}

	e.mu.Lock()
	if s.expired(e.session) {
		e.mu.Unlock()
		s.cache.Remove(id)
		return domain.ErrSessionNotFound
	}
	e.session.LastAccess = s.now()
	fn(e)
	e.mu.Unlock()
	return nil
}

func (s *MemoryStore) expired(sess *domain.Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.LastAccess) > s.ttl
}
