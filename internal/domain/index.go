package domain

import (
	"context"
	"fmt"
	"sort"
)

// ScoredSegment is a segment paired with its similarity to a query.
type ScoredSegment struct {
	Segment Segment
	Score   float32
}

// VectorIndex is the searchable form of one resume. It is read-only after
// the indexer builds it.
type VectorIndex struct {
	ID       string
	Segments []Segment
	Store    VectorStore

	byID map[string]int
}

// NewVectorIndex creates an index over segments backed by store.
func NewVectorIndex(id string, segments []Segment, store VectorStore) *VectorIndex {
	byID := make(map[string]int, len(segments))
	for i, s := range segments {
		byID[s.ID] = i
	}
	return &VectorIndex{
		ID:       id,
		Segments: segments,
		Store:    store,
		byID:     byID,
	}
}

// Len returns the number of segments.
func (idx *VectorIndex) Len() int {
	return len(idx.Segments)
}

// Segment looks up a segment by id.
func (idx *VectorIndex) Segment(id string) (Segment, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return Segment{}, false
	}
	return idx.Segments[i], true
}

// Embedding returns the stored vector of a segment.
func (idx *VectorIndex) Embedding(ctx context.Context, segmentID string) ([]float32, error) {
	return idx.Store.Embedding(ctx, segmentID)
}

// Search returns up to k segments most similar to query. Equal scores keep
// segment order.
func (idx *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]ScoredSegment, error) {
	if k <= 0 || len(idx.Segments) == 0 {
		return nil, nil
	}
	hits, err := idx.Store.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index %s: %w", idx.ID, err)
	}

	results := make([]ScoredSegment, 0, len(hits))
	for _, h := range hits {
		seg, ok := idx.Segment(h.SegmentID)
		if !ok {
			continue
		}
		results = append(results, ScoredSegment{Segment: seg, Score: h.Score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Segment.Index < results[j].Segment.Index
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Close drops the index vectors.
func (idx *VectorIndex) Close(ctx context.Context) error {
	if idx.Store == nil {
		return nil
	}
	return idx.Store.Drop(ctx)
}
