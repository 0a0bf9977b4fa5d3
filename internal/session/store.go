// Package session maps session ids to resume indexes and transcripts.
package session

import (
	"context"

	"github.com/cloo-solutions/resumechat/internal/domain"
)

// Store is safe for concurrent use. Unknown ids yield domain.ErrSessionNotFound.
type Store interface {
	// Create registers index under a fresh id.
	Create(ctx context.Context, index *domain.VectorIndex) (string, error)
	// Get returns a copy of the session.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Append records ex and returns the full transcript after the append.
	Append(ctx context.Context, id string, ex domain.Exchange) ([]domain.Exchange, error)
	// Evict removes the session and releases its index.
	Evict(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
}
