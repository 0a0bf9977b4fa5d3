package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/llm"
	"github.com/cloo-solutions/resumechat/internal/storage"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockChatClient is a mock implementation of ChatClient
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	args := m.Called(ctx, messages, opts)
	return args.String(0), args.Error(1)
}

// MockTextLoader is a mock implementation of TextLoader
type MockTextLoader struct {
	mock.Mock
}

func (m *MockTextLoader) LoadText(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// MockExtractor is a mock implementation of Extractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// MockArchiver is a mock implementation of ResumeArchiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) PutFile(ctx context.Context, key, localPath, contentType string) error {
	args := m.Called(ctx, key, localPath, contentType)
	return args.Error(0)
}

func (m *MockArchiver) HeadObject(ctx context.Context, key string) (*storage.ObjectMetadata, error) {
	args := m.Called(ctx, key)
	if meta := args.Get(0); meta != nil {
		return meta.(*storage.ObjectMetadata), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockArchiver) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockArchiver) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// keywordEmbedder maps text to keyword counts so similarity is predictable.
type keywordEmbedder struct {
	vocab []string
	calls int
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{vocab: []string{"python", "go", "java", "hiking", "photography", "spanish", "candidate"}}
}

func (k *keywordEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	k.calls++
	vec := make([]float32, len(k.vocab)+1)
	// constant bias keeps every vector non-zero
	vec[len(k.vocab)] = 0.01
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		for i, v := range k.vocab {
			if w == v {
				vec[i]++
			}
		}
	}
	return vec, nil
}

func userPrompt(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func promptContains(s string) interface{} {
	return mock.MatchedBy(func(messages []llm.Message) bool {
		return strings.Contains(userPrompt(messages), s)
	})
}

func segmentsOf(texts ...string) []domain.Segment {
	segs := make([]domain.Segment, 0, len(texts))
	for i, text := range texts {
		segs = append(segs, domain.NewSegment(strings.Join(texts, "\n"), i, text))
	}
	return segs
}
