package service

import (
	"context"
	"errors"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/telemetry"
	"github.com/cloo-solutions/resumechat/internal/vectorstore"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Indexer embeds segments into a fresh vector store per resume.
type Indexer struct {
	embedder EmbeddingClient
	stores   vectorstore.Factory
	log      zerolog.Logger
}

func NewIndexer(embedder EmbeddingClient, stores vectorstore.Factory, log zerolog.Logger) *Indexer {
	return &Indexer{
		embedder: embedder,
		stores:   stores,
		log:      log.With().Str("component", "indexer").Logger(),
	}
}

// Build embeds every segment. Any failure discards the partial index and is
// reported as domain.ErrIndexingFailed.
func (x *Indexer) Build(ctx context.Context, segments []domain.Segment) (index *domain.VectorIndex, err error) {
	if len(segments) == 0 {
		x.log.Error().Msg("no segments to index")
		return nil, domain.ErrIndexingFailed
	}

	indexID := uuid.NewString()
	ctx, span := telemetry.StartSpan(ctx, "indexer.build", telemetry.SpanAttributes{IndexID: indexID, Operation: "index"})
	defer func() { span.Finish(err) }()

	store, err := x.stores.NewStore(ctx, indexID)
	if err != nil {
		x.log.Error().Err(err).Str("index_id", indexID).Msg("failed to create vector store")
		return nil, domain.ErrIndexingFailed.WithCause(err)
	}

	for _, seg := range segments {
		vec, err := x.embedder.GenerateEmbedding(ctx, seg.Text)
		if err == nil {
			err = store.Add(ctx, seg.ID, vec)
		}
		if err != nil {
			x.log.Error().Err(err).
				Str("index_id", indexID).
				Str("segment_id", seg.ID).
				Msg("failed to index segment")
			if dropErr := store.Drop(ctx); dropErr != nil {
				x.log.Warn().Err(dropErr).Str("index_id", indexID).Msg("failed to drop partial index")
			}
			return nil, domain.ErrIndexingFailed.WithCause(err)
		}
	}

	x.log.Info().Str("index_id", indexID).Int("segments", len(segments)).Msg("index built")
	return domain.NewVectorIndex(indexID, segments, store), nil
}

// Verify reports whether every segment of index has a stored embedding. It
// logs one warning per missing segment. An empty index is never verified.
func (x *Indexer) Verify(ctx context.Context, index *domain.VectorIndex) bool {
	if index == nil || index.Len() == 0 {
		x.log.Warn().Msg("cannot verify an empty index")
		return false
	}

	ok := true
	for _, seg := range index.Segments {
		vec, err := index.Embedding(ctx, seg.ID)
		switch {
		case errors.Is(err, domain.ErrEmbeddingNotFound) || (err == nil && len(vec) == 0):
			x.log.Warn().Str("segment_id", seg.ID).Msgf("missing embedding for segment %s", seg.ID)
			ok = false
		case err != nil:
			x.log.Warn().Err(err).Str("segment_id", seg.ID).Msg("failed to read embedding")
			ok = false
		}
	}
	return ok
}
