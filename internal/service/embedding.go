package service

import (
	"context"

	"github.com/cloo-solutions/resumechat/internal/llm"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChatClient defines the interface for chat completion
type ChatClient interface {
	Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error)
}

// TextLoader defines the interface for reading document text
type TextLoader interface {
	LoadText(ctx context.Context, path string) (string, error)
}
