package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGFactory creates stores that share one resume_segment_embeddings table,
// partitioned by index id.
type PGFactory struct {
	db dbtx
}

func NewPGFactory(pool *pgxpool.Pool) *PGFactory {
	return &PGFactory{db: pool}
}

func (f *PGFactory) NewStore(ctx context.Context, indexID string) (domain.VectorStore, error) {
	if indexID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	return &PGStore{db: f.db, indexID: indexID}, nil
}

// Purge deletes every stored vector. Sessions do not outlive the process, so
// rows present at startup belong to no session.
func (f *PGFactory) Purge(ctx context.Context) (int64, error) {
	tag, err := f.db.Exec(ctx, `DELETE FROM resume_segment_embeddings`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge vectors: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PGStore keeps one index's vectors in Postgres with pgvector.
type PGStore struct {
	db      dbtx
	indexID string
}

func (s *PGStore) Add(ctx context.Context, segmentID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("empty embedding for segment %s", segmentID)
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO resume_segment_embeddings (index_id, segment_id, embedding)
		 VALUES ($1, $2, $3)`,
		s.indexID, segmentID, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to insert embedding for segment %s: %w", segmentID, err)
	}
	return nil
}

func (s *PGStore) Embedding(ctx context.Context, segmentID string) ([]float32, error) {
	var vec pgvector.Vector
	err := s.db.QueryRow(ctx,
		`SELECT embedding::text FROM resume_segment_embeddings
		 WHERE index_id = $1 AND segment_id = $2`,
		s.indexID, segmentID,
	).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmbeddingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding for segment %s: %w", segmentID, err)
	}
	return vec.Slice(), nil
}

// Search orders by cosine distance; ties fall back to insertion time.
func (s *PGStore) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredID, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT segment_id, 1 - (embedding <=> $2) AS score
		 FROM resume_segment_embeddings
		 WHERE index_id = $1
		 ORDER BY embedding <=> $2, created_at, seq
		 LIMIT $3`,
		s.indexID, pgvector.NewVector(query), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search index %s: %w", s.indexID, err)
	}
	defer rows.Close()

	var results []domain.ScoredID
	for rows.Next() {
		var r domain.ScoredID
		var score float64
		if err := rows.Scan(&r.SegmentID, &score); err != nil {
			return nil, err
		}
		r.Score = float32(score)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PGStore) Drop(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM resume_segment_embeddings WHERE index_id = $1`, s.indexID)
	if err != nil {
		return fmt.Errorf("failed to drop index %s: %w", s.indexID, err)
	}
	return nil
}
