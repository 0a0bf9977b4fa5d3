package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Chat roles.
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Options carries per-call sampling parameters.
type Options struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// ChatRequest is a fully resolved chat completion call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// ChatConfig configures a ChatClient.
type ChatConfig struct {
	Token   string
	BaseURL string
	Model   string
	TopP    float32
	Retry   RetryPolicy
}

// ChatClient issues chat completions against one model.
type ChatClient struct {
	api   ChatAPI
	model string
	topP  float32
	retry RetryPolicy
	log   zerolog.Logger
}

// NewChatClient creates a chat client for cfg.
func NewChatClient(cfg ChatConfig, log zerolog.Logger) *ChatClient {
	return NewChatClientWithAPI(NewOpenAIAdapter(cfg.Token, cfg.BaseURL, ""), cfg, log)
}

// NewChatClientWithAPI creates a chat client over an explicit API.
func NewChatClientWithAPI(api ChatAPI, cfg ChatConfig, log zerolog.Logger) *ChatClient {
	return &ChatClient{
		api:   api,
		model: cfg.Model,
		topP:  cfg.TopP,
		retry: cfg.Retry,
		log:   log.With().Str("component", "chat").Str("model", cfg.Model).Logger(),
	}
}

// Complete sends messages and returns the trimmed reply. A blank reply is
// ErrEmptyResponse.
func (c *ChatClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	topP := opts.TopP
	if topP == 0 {
		topP = c.topP
	}
	req := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		TopP:        topP,
		MaxTokens:   opts.MaxTokens,
	}

	var reply string
	err := c.retry.Do(ctx, c.log, "chat", func(ctx context.Context) error {
		out, err := c.api.CreateChat(ctx, req)
		if err != nil {
			return err
		}
		reply = strings.TrimSpace(out)
		if reply == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return reply, nil
}
