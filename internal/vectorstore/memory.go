// Package vectorstore holds segment embeddings for resume indexes.
package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cloo-solutions/resumechat/internal/domain"
)

// Factory creates an empty store for one index.
type Factory interface {
	NewStore(ctx context.Context, indexID string) (domain.VectorStore, error)
}

// MemoryFactory creates process-local stores.
type MemoryFactory struct{}

func (MemoryFactory) NewStore(ctx context.Context, indexID string) (domain.VectorStore, error) {
	return NewMemoryStore(), nil
}

// MemoryStore keeps vectors in a map. Search is a linear cosine scan, which
// is adequate for the few dozen segments of a single resume.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	vectors map[string][]float32
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vectors: make(map[string][]float32)}
}

// Add stores a copy of embedding under segmentID.
func (s *MemoryStore) Add(ctx context.Context, segmentID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("empty embedding for segment %s", segmentID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vectors[segmentID]; ok {
		return fmt.Errorf("segment %s already has an embedding", segmentID)
	}
	s.vectors[segmentID] = append([]float32(nil), embedding...)
	s.order = append(s.order, segmentID)
	return nil
}

// Embedding returns the stored vector for segmentID.
func (s *MemoryStore) Embedding(ctx context.Context, segmentID string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vec, ok := s.vectors[segmentID]
	if !ok {
		return nil, domain.ErrEmbeddingNotFound
	}
	return append([]float32(nil), vec...), nil
}

// Search ranks all vectors by cosine similarity to query. Ties keep
// insertion order.
func (s *MemoryStore) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredID, error) {
	if k <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.ScoredID, 0, len(s.order))
	for _, id := range s.order {
		results = append(results, domain.ScoredID{
			SegmentID: id,
			Score:     cosineSimilarity(query, s.vectors[id]),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Drop removes every vector.
func (s *MemoryStore) Drop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vectors = make(map[string][]float32)
	s.order = nil
	return nil
}

// Len returns the number of stored vectors.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
