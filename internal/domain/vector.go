package domain

import "context"

// ScoredID is a segment id returned from a similarity search.
type ScoredID struct {
	SegmentID string
	Score     float32
}

// VectorStore holds the embeddings of one index.
type VectorStore interface {
	Add(ctx context.Context, segmentID string, embedding []float32) error
	// Embedding returns ErrEmbeddingNotFound when the segment has no vector.
	Embedding(ctx context.Context, segmentID string) ([]float32, error)
	// Search returns at most k ids ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]ScoredID, error)
	// Drop releases every vector held for the index.
	Drop(ctx context.Context) error
}
