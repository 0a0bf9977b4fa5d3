package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the sentence-transformers model served for embeddings
	DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	// DefaultEmbeddingDimensions is the output size of DefaultEmbeddingModel
	DefaultEmbeddingDimensions = 384
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrEmptyResponse is returned when the provider answers with no content
	ErrEmptyResponse = errors.New("provider returned an empty response")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// ChatAPI defines the interface for chat completion
type ChatAPI interface {
	CreateChat(ctx context.Context, req ChatRequest) (string, error)
}

// OpenAIAdapter talks to any OpenAI-compatible endpoint.
type OpenAIAdapter struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
}

// NewOpenAIAdapter creates an adapter for the API at baseURL. An empty
// baseURL targets api.openai.com.
func NewOpenAIAdapter(token, baseURL, embeddingModel string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return &OpenAIAdapter{
		client:         openai.NewClientWithConfig(cfg),
		embeddingModel: openai.EmbeddingModel(embeddingModel),
	}
}

// CreateEmbeddings calls the embeddings endpoint
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateChat calls the chat completions endpoint and returns the first choice.
func (a *OpenAIAdapter) CreateChat(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Config configures the embedding client.
type Config struct {
	Token               string
	BaseURL             string
	EmbeddingModel      string
	EmbeddingDimensions int
	Retry               RetryPolicy
}

// Client generates embeddings with dimension checks and retries.
type Client struct {
	api        EmbeddingAPI
	dimensions int
	retry      RetryPolicy
	log        zerolog.Logger
}

// NewClient creates an embedding client for cfg.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	return NewClientWithAPI(NewOpenAIAdapter(cfg.Token, cfg.BaseURL, cfg.EmbeddingModel), cfg, log)
}

// NewClientWithAPI creates an embedding client over an explicit API.
func NewClientWithAPI(api EmbeddingAPI, cfg Config, log zerolog.Logger) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		api:        api,
		dimensions: dimensions,
		retry:      cfg.Retry,
		log:        log.With().Str("component", "embeddings").Logger(),
	}
}

// Dimensions returns the expected embedding size.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var embedding []float32
	err := c.retry.Do(ctx, c.log, "embedding", func(ctx context.Context) error {
		vec, err := c.api.CreateEmbeddings(ctx, text)
		if err != nil {
			return err
		}
		if len(vec) != c.dimensions {
			return fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(vec))
		}
		embedding = vec
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrWrongDimensions) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	return embedding, nil
}
