package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/llm"
	"github.com/cloo-solutions/resumechat/internal/telemetry"
	"github.com/rs/zerolog"
)

const (
	factsTemperature = 0.1
	factsMaxTokens   = 500
)

// QueryConfig holds retrieval and sampling parameters for answers.
type QueryConfig struct {
	SimilarityTopK int
	Temperature    float32
	TopP           float32
	MaxTokens      int
}

func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		SimilarityTopK: 7,
		Temperature:    0.1,
		TopP:           0.95,
		MaxTokens:      512,
	}
}

// QueryEngine answers questions grounded in the top segments of an index.
type QueryEngine struct {
	embedder EmbeddingClient
	chat     ChatClient
	cfg      QueryConfig
	log      zerolog.Logger
}

func NewQueryEngine(embedder EmbeddingClient, chat ChatClient, cfg QueryConfig, log zerolog.Logger) *QueryEngine {
	if cfg.SimilarityTopK <= 0 {
		cfg.SimilarityTopK = DefaultQueryConfig().SimilarityTopK
	}
	return &QueryEngine{
		embedder: embedder,
		chat:     chat,
		cfg:      cfg,
		log:      log.With().Str("component", "query").Logger(),
	}
}

// GenerateFacts produces a focused multi-aspect summary of the candidate.
func (q *QueryEngine) GenerateFacts(ctx context.Context, index *domain.VectorIndex) (string, error) {
	return q.generate(ctx, index, "facts", FactsQuery, promptData{Instructions: factsInstructions}, llm.Options{
		Temperature: factsTemperature,
		TopP:        q.cfg.TopP,
		MaxTokens:   factsMaxTokens,
	})
}

// Answer responds to question using only retrieved resume content.
func (q *QueryEngine) Answer(ctx context.Context, index *domain.VectorIndex, question string) (string, error) {
	return q.generate(ctx, index, "answer", question, promptData{Instructions: answerInstructions, Question: question}, llm.Options{
		Temperature: q.cfg.Temperature,
		TopP:        q.cfg.TopP,
		MaxTokens:   q.cfg.MaxTokens,
	})
}

// Retrieve returns the top segments for query.
func (q *QueryEngine) Retrieve(ctx context.Context, index *domain.VectorIndex, query string) ([]domain.ScoredSegment, error) {
	vec, err := q.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	return index.Search(ctx, vec, q.cfg.SimilarityTopK)
}

func (q *QueryEngine) generate(ctx context.Context, index *domain.VectorIndex, op, query string, data promptData, opts llm.Options) (reply string, err error) {
	if index == nil {
		return "", domain.ErrGenerationFailed.WithCause(domain.ErrMissingRequiredField)
	}
	ctx, span := telemetry.StartSpan(ctx, "query."+op, telemetry.SpanAttributes{IndexID: index.ID, Operation: op})
	defer func() { span.Finish(err) }()

	hits, err := q.Retrieve(ctx, index, query)
	if err != nil {
		q.log.Error().Err(err).Str("op", op).Str("index_id", index.ID).Msg("retrieval failed")
		return "", domain.ErrGenerationFailed.WithCause(err)
	}

	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.Segment.Text)
	}
	data.Context = strings.Join(parts, "\n\n")

	prompt, err := renderPrompt(data)
	if err != nil {
		return "", domain.ErrGenerationFailed.WithCause(err)
	}

	reply, err = q.chat.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts)
	if err != nil {
		q.log.Error().Err(err).Str("op", op).Str("index_id", index.ID).Msg("generation failed")
		return "", domain.ErrGenerationFailed.WithCause(err)
	}

	q.log.Debug().Str("op", op).Str("index_id", index.ID).Int("segments", len(hits)).Msg("response generated")
	return reply, nil
}
