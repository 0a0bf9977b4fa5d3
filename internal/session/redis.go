package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/vectorstore"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ Store = (*RedisStore)(nil)

const (
	sessionPrefix     = "resumechat:session:"
	maxAppendAttempts = 5
)

// record is the persisted form of a session. Vectors travel with it so any
// replica can answer questions.
type record struct {
	IndexID    string               `json:"index_id"`
	Segments   []domain.Segment     `json:"segments"`
	Embeddings map[string][]float32 `json:"embeddings"`
	History    []domain.Exchange    `json:"history"`
	CreatedAt  time.Time            `json:"created_at"`
	LastAccess time.Time            `json:"last_access"`
}

// RedisStore persists sessions as JSON with a sliding TTL. A zero ttl keeps
// sessions until they are evicted.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "session").Str("backend", "redis").Logger(),
	}
}

// NewRedisClient parses url and verifies the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Create(ctx context.Context, index *domain.VectorIndex) (string, error) {
	if index == nil {
		return "", domain.ErrMissingRequiredField
	}

	embeddings := make(map[string][]float32, index.Len())
	for _, seg := range index.Segments {
		vec, err := index.Embedding(ctx, seg.ID)
		if err != nil {
			return "", fmt.Errorf("failed to read embedding for segment %s: %w", seg.ID, err)
		}
		embeddings[seg.ID] = vec
	}

	now := time.Now().UTC()
	data, err := json.Marshal(record{
		IndexID:    index.ID,
		Segments:   index.Segments,
		Embeddings: embeddings,
		CreatedAt:  now,
		LastAccess: now,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	for {
		id := uuid.NewString()
		ok, err := s.client.SetNX(ctx, sessionPrefix+id, data, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("failed to save session: %w", err)
		}
		if ok {
			s.log.Info().Str("session_id", id).Int("segments", index.Len()).Msg("session created")
			return id, nil
		}
	}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	rec, err := s.load(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, sessionPrefix+id, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("failed to refresh session ttl")
		}
	}
	return rec.session(ctx, id)
}

// Append uses optimistic locking so concurrent appends never drop an exchange.
func (s *RedisStore) Append(ctx context.Context, id string, ex domain.Exchange) ([]domain.Exchange, error) {
	key := sessionPrefix + id
	var history []domain.Exchange

	txf := func(tx *redis.Tx) error {
		rec, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		rec.History = append(rec.History, ex)
		rec.LastAccess = time.Now().UTC()
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			history = rec.History
		}
		return err
	}

	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return history, nil
	}
	return nil, fmt.Errorf("failed to append to session %s: too much contention", id)
}

func (s *RedisStore) Evict(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, sessionPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	s.log.Debug().Str("session_id", id).Msg("session evicted")
	return nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, sessionPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c getter, id string) (*record, error) {
	data, err := c.Get(ctx, sessionPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &rec, nil
}

// session rebuilds a searchable index from the record.
func (r *record) session(ctx context.Context, id string) (*domain.Session, error) {
	store := vectorstore.NewMemoryStore()
	for _, seg := range r.Segments {
		vec, ok := r.Embeddings[seg.ID]
		if !ok {
			continue
		}
		if err := store.Add(ctx, seg.ID, vec); err != nil {
			return nil, err
		}
	}
	return &domain.Session{
		ID:         id,
		Index:      domain.NewVectorIndex(r.IndexID, r.Segments, store),
		History:    r.History,
		CreatedAt:  r.CreatedAt,
		LastAccess: time.Now().UTC(),
	}, nil
}
