package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatAPI is a mock for the chat completions endpoint
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChat(ctx context.Context, req ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestChatClient_Complete(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewChatClientWithAPI(mockAPI, ChatConfig{Model: "deepseek/deepseek-chat-v3.1", TopP: 0.95, Retry: fastRetry}, zerolog.Nop())

	messages := []Message{
		{Role: RoleSystem, Content: "You are a recruiter."},
		{Role: RoleUser, Content: "Summarise the candidate."},
	}
	mockAPI.On("CreateChat", mock.Anything, ChatRequest{
		Model:       "deepseek/deepseek-chat-v3.1",
		Messages:    messages,
		Temperature: 0.1,
		TopP:        0.95,
		MaxTokens:   500,
	}).Return("  A strong Go engineer.\n", nil)

	reply, err := client.Complete(context.Background(), messages, Options{Temperature: 0.1, MaxTokens: 500})

	require.NoError(t, err)
	assert.Equal(t, "A strong Go engineer.", reply)
	mockAPI.AssertExpectations(t)
}

func TestChatClient_Complete_EmptyReply(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewChatClientWithAPI(mockAPI, ChatConfig{Model: "m", Retry: fastRetry}, zerolog.Nop())

	mockAPI.On("CreateChat", mock.Anything, mock.Anything).Return("   ", nil)

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{})

	assert.ErrorIs(t, err, ErrEmptyResponse)
	mockAPI.AssertNumberOfCalls(t, "CreateChat", 1)
}

func TestChatClient_Complete_ContextCancelled(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewChatClientWithAPI(mockAPI, ChatConfig{Model: "m", Retry: fastRetry}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	mockAPI.On("CreateChat", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return("", errors.New("request aborted"))

	_, err := client.Complete(ctx, []Message{{Role: RoleUser, Content: "hi"}}, Options{})

	assert.ErrorIs(t, err, context.Canceled)
	mockAPI.AssertNumberOfCalls(t, "CreateChat", 1)
}
