package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/llm"
	"github.com/cloo-solutions/resumechat/internal/vectorstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, embedder EmbeddingClient, texts ...string) *domain.VectorIndex {
	t.Helper()
	x := NewIndexer(embedder, vectorstore.MemoryFactory{}, zerolog.Nop())
	index, err := x.Build(context.Background(), segmentsOf(texts...))
	require.NoError(t, err)
	return index
}

func TestQueryEngine_Answer_UsesOnlyRetrievedSegments(t *testing.T) {
	ctx := context.Background()
	embedder := newKeywordEmbedder()
	index := buildIndex(t, embedder,
		"Skills: Python, Go",
		"Interests: Hiking, Photography",
		"Languages: Spanish",
	)
	chat := new(MockChatClient)

	var prompt string
	chat.On("Complete", mock.Anything, mock.Anything, llm.Options{Temperature: 0.1, TopP: 0.95, MaxTokens: 512}).
		Run(func(args mock.Arguments) {
			prompt = userPrompt(args.Get(1).([]llm.Message))
		}).
		Return("Yes, the candidate lists Python and Go.", nil)

	cfg := DefaultQueryConfig()
	cfg.SimilarityTopK = 1
	q := NewQueryEngine(embedder, chat, cfg, zerolog.Nop())

	answer, err := q.Answer(ctx, index, "Does the candidate know Python?")

	require.NoError(t, err)
	assert.Equal(t, "Yes, the candidate lists Python and Go.", answer)
	assert.Contains(t, prompt, "Skills: Python, Go")
	assert.Contains(t, prompt, "Question: Does the candidate know Python?")
	assert.NotContains(t, prompt, "Hiking")
	assert.NotContains(t, prompt, "Spanish")
}

func TestQueryEngine_Retrieve_RespectsTopK(t *testing.T) {
	embedder := newKeywordEmbedder()
	index := buildIndex(t, embedder, "Python", "Go", "Java", "Hiking")
	q := NewQueryEngine(embedder, new(MockChatClient), QueryConfig{SimilarityTopK: 2}, zerolog.Nop())

	hits, err := q.Retrieve(context.Background(), index, "python and java")

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.ElementsMatch(t, []string{"Python", "Java"}, []string{hits[0].Segment.Text, hits[1].Segment.Text})
}

func TestQueryEngine_GenerateFacts(t *testing.T) {
	embedder := newKeywordEmbedder()
	index := buildIndex(t, embedder, "Name: Ada Lovelace", "Skills: Python, Go")
	chat := new(MockChatClient)
	chat.On("Complete", mock.Anything, promptContains("Analyze the following resume profile"), llm.Options{Temperature: 0.1, TopP: 0.95, MaxTokens: 500}).
		Return("1. Technical skills: Python, Go", nil)

	q := NewQueryEngine(embedder, chat, DefaultQueryConfig(), zerolog.Nop())
	facts, err := q.GenerateFacts(context.Background(), index)

	require.NoError(t, err)
	assert.Equal(t, "1. Technical skills: Python, Go", facts)
	chat.AssertExpectations(t)
}

func TestQueryEngine_Answer_ChatError(t *testing.T) {
	embedder := newKeywordEmbedder()
	index := buildIndex(t, embedder, "Skills: Python")
	chat := new(MockChatClient)
	chat.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("model overloaded"))

	q := NewQueryEngine(embedder, chat, DefaultQueryConfig(), zerolog.Nop())
	_, err := q.Answer(context.Background(), index, "Python?")

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, "Error creating LLM model", domain.MessageOf(err))
}

func TestQueryEngine_Answer_EmbeddingError(t *testing.T) {
	index := buildIndex(t, newKeywordEmbedder(), "Skills: Python")
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "Python?").Return(nil, errors.New("timeout"))
	chat := new(MockChatClient)

	q := NewQueryEngine(embedder, chat, DefaultQueryConfig(), zerolog.Nop())
	_, err := q.Answer(context.Background(), index, "Python?")

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	chat.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueryEngine_Answer_NilIndex(t *testing.T) {
	q := NewQueryEngine(newKeywordEmbedder(), new(MockChatClient), DefaultQueryConfig(), zerolog.Nop())

	_, err := q.Answer(context.Background(), nil, "Python?")

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}
