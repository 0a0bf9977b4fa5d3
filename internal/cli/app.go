// Package cli wires configuration into the resume pipeline and exposes the
// serve and chat commands.
package cli

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/resumechat/internal/config"
	"github.com/cloo-solutions/resumechat/internal/database"
	"github.com/cloo-solutions/resumechat/internal/llm"
	"github.com/cloo-solutions/resumechat/internal/pdf"
	"github.com/cloo-solutions/resumechat/internal/service"
	"github.com/cloo-solutions/resumechat/internal/session"
	"github.com/cloo-solutions/resumechat/internal/storage"
	"github.com/cloo-solutions/resumechat/internal/vectorstore"
	"github.com/rs/zerolog"
)

// App holds the wired pipeline and the resources it owns.
type App struct {
	Service  *service.ResumeService
	Sessions session.Store
	// Sweeper is set when sessions live in process memory.
	Sweeper *session.MemoryStore

	closers []func()
	log     zerolog.Logger
}

// NewApp builds every component selected by cfg. Close releases them.
func NewApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	app := &App{log: log}

	retry := llm.RetryPolicy{MaxRetries: cfg.MaxRetries, Timeout: cfg.RequestTimeout}
	embedder := llm.NewClient(llm.Config{
		Token:               cfg.HuggingFaceToken,
		BaseURL:             cfg.EmbeddingBaseURL,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		Retry:               retry,
	}, log)
	chat := llm.NewChatClient(llm.ChatConfig{
		Token:   cfg.ChatToken(),
		BaseURL: cfg.ChatBaseURL(),
		Model:   cfg.ChatModel(),
		TopP:    cfg.TopP,
		Retry:   retry,
	}, log)
	log.Info().
		Str("embedding_model", cfg.EmbeddingModel).
		Int("embedding_dimensions", embedder.Dimensions()).
		Str("llm_provider", cfg.LLMProvider).
		Str("chat_model", cfg.ChatModel()).
		Int("top_k", cfg.TopK).
		Msg("model clients configured")

	loader, err := pdf.NewLoader(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf loader: %w", err)
	}

	stores, err := app.vectorStores(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	sessions, err := app.sessionStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Sessions = sessions

	app.Service = service.NewResumeService(
		service.NewProfileExtractor(loader, chat, log),
		service.NewChunker(service.ChunkConfig{MaxChars: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}, log),
		service.NewIndexer(embedder, stores, log),
		service.NewQueryEngine(embedder, chat, service.QueryConfig{
			SimilarityTopK: cfg.SimilarityTopK,
			Temperature:    cfg.Temperature,
			TopP:           cfg.TopP,
			MaxTokens:      cfg.MaxNewTokens,
		}, log),
		sessions,
		log,
	)

	if cfg.HasS3() {
		archive, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Info().Str("bucket", cfg.S3Bucket).Msg("resume archive ready")
		app.Service.WithArchive(archive)
	}

	log.Info().
		Str("llm_provider", cfg.LLMProvider).
		Str("chat_model", cfg.ChatModel()).
		Str("embedding_model", cfg.EmbeddingModel).
		Str("session_backend", cfg.SessionBackend).
		Str("vector_backend", cfg.VectorBackend).
		Msg("pipeline ready")
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) vectorStores(ctx context.Context, cfg *config.Config) (vectorstore.Factory, error) {
	if cfg.VectorBackend != config.BackendPGVector {
		return vectorstore.MemoryFactory{}, nil
	}

	if err := vectorstore.Migrate(cfg.DatabaseURL, a.log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	a.log.Info().Msg("connected to database")

	factory := vectorstore.NewPGFactory(pool)
	purged, err := factory.Purge(ctx)
	if err != nil {
		return nil, err
	}
	if purged > 0 {
		a.log.Info().Int64("rows", purged).Msg("purged vectors left by a previous run")
	}
	return factory, nil
}

func (a *App) sessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.SessionBackend == config.BackendRedis {
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				a.log.Warn().Err(err).Msg("failed to close redis client")
			}
		})
		a.log.Info().Msg("connected to redis")
		return session.NewRedisStore(client, cfg.SessionTTL, a.log), nil
	}

	store, err := session.NewMemoryStore(cfg.SessionCapacity, cfg.SessionTTL, a.log)
	if err != nil {
		return nil, err
	}
	a.Sweeper = store
	return store, nil
}
