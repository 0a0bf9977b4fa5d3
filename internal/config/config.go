package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LLM providers.
const (
	ProviderOpenRouter  = "openrouter"
	ProviderHuggingFace = "huggingface"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPGVector = "pgvector"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"7860"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`

	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"10485760"`

	HuggingFaceToken    string `envconfig:"HUGGINGFACE_TOKEN" required:"true"`
	HuggingFaceLLM      string `envconfig:"HUGGINGFACE_MODEL_LLM" required:"true"`
	HuggingFaceBaseURL  string `envconfig:"HUGGINGFACE_BASE_URL" default:"https://router.huggingface.co/v1"`
	EmbeddingModel      string `envconfig:"HUGGINGFACE_MODEL_EMBEDDING" default:"sentence-transformers/all-MiniLM-L6-v2"`
	EmbeddingBaseURL    string `envconfig:"EMBEDDING_BASE_URL" default:"https://router.huggingface.co/hf-inference/v1"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"384"`

	OpenRouterAPIKey  string `envconfig:"OPENROUTER_API_KEY" required:"true"`
	OpenRouterModel   string `envconfig:"OPENROUTER_MODEL" default:"deepseek/deepseek-chat-v3.1"`
	OpenRouterBaseURL string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	LLMProvider       string `envconfig:"LLM_PROVIDER" default:"openrouter"`

	TopK           int           `envconfig:"TOP_K" default:"5"`
	TopP           float32       `envconfig:"TOP_P" default:"0.95"`
	MaxNewTokens   int           `envconfig:"MAX_NEW_TOKENS" default:"512"`
	MinNewTokens   int           `envconfig:"MIN_NEW_TOKENS" default:"256"`
	Temperature    float32       `envconfig:"TEMPERATURE" default:"0.1"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"3"`

	ChunkSize      int `envconfig:"CHUNK_SIZE" default:"400"`
	ChunkOverlap   int `envconfig:"CHUNK_OVERLAP" default:"50"`
	SimilarityTopK int `envconfig:"SIMILARITY_TOP_K" default:"7"`

	SessionBackend       string        `envconfig:"SESSION_BACKEND" default:"memory"`
	SessionTTL           time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	SessionCapacity      int           `envconfig:"SESSION_CAPACITY" default:"256"`
	SessionSweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
	RedisURL             string        `envconfig:"REDIS_URL"`

	VectorBackend string `envconfig:"VECTOR_BACKEND" default:"memory"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"resumechat-resumes"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.MinNewTokens > c.MaxNewTokens {
		errs = append(errs, fmt.Errorf("MIN_NEW_TOKENS (%d) exceeds MAX_NEW_TOKENS (%d)", c.MinNewTokens, c.MaxNewTokens))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, errors.New("CHUNK_SIZE must be positive"))
	}
	if c.ChunkOverlap < 0 || (c.ChunkSize > 0 && c.ChunkOverlap >= c.ChunkSize) {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap))
	}
	if c.TopK <= 0 {
		errs = append(errs, errors.New("TOP_K must be positive"))
	}
	if c.SimilarityTopK <= 0 {
		errs = append(errs, errors.New("SIMILARITY_TOP_K must be positive"))
	}
	if c.TopP <= 0 || c.TopP > 1 {
		errs = append(errs, fmt.Errorf("TOP_P must be in (0, 1], got %v", c.TopP))
	}
	if c.EmbeddingDimensions <= 0 {
		errs = append(errs, errors.New("EMBEDDING_DIMENSIONS must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES cannot be negative"))
	}

	switch c.LLMProvider {
	case ProviderOpenRouter, ProviderHuggingFace:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}

	switch c.SessionBackend {
	case BackendMemory:
		if c.SessionCapacity <= 0 {
			errs = append(errs, errors.New("SESSION_CAPACITY must be positive"))
		}
		if c.SessionTTL > 0 && c.SessionSweepInterval <= 0 {
			errs = append(errs, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive when SESSION_TTL is set, got %s", c.SessionSweepInterval))
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when SESSION_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend))
	}

	switch c.VectorBackend {
	case BackendMemory:
	case BackendPGVector:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when VECTOR_BACKEND=pgvector"))
		}
		if c.SessionBackend == BackendRedis {
			errs = append(errs, errors.New("SESSION_BACKEND=redis stores vectors itself and cannot be combined with VECTOR_BACKEND=pgvector"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown VECTOR_BACKEND %q", c.VectorBackend))
	}

	return errors.Join(errs...)
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// ChatModel returns the model name for the configured provider.
func (c *Config) ChatModel() string {
	if c.LLMProvider == ProviderHuggingFace {
		return c.HuggingFaceLLM
	}
	return c.OpenRouterModel
}

// ChatBaseURL returns the API base URL for the configured provider.
func (c *Config) ChatBaseURL() string {
	if c.LLMProvider == ProviderHuggingFace {
		return c.HuggingFaceBaseURL
	}
	return c.OpenRouterBaseURL
}

// ChatToken returns the credential for the configured provider.
func (c *Config) ChatToken() string {
	if c.LLMProvider == ProviderHuggingFace {
		return c.HuggingFaceToken
	}
	return c.OpenRouterAPIKey
}
