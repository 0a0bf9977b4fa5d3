//go:build integration

package llm

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_GenerateEmbedding_RealAPI(t *testing.T) {
	token := os.Getenv("HUGGINGFACE_TOKEN")
	baseURL := os.Getenv("EMBEDDING_BASE_URL")
	if token == "" || baseURL == "" {
		t.Skip("HUGGINGFACE_TOKEN or EMBEDDING_BASE_URL not set, skipping integration test")
	}

	client := NewClient(Config{Token: token, BaseURL: baseURL}, zerolog.Nop())
	embedding, err := client.GenerateEmbedding(context.Background(), "Software engineer skilled in Python and Go.")

	require.NoError(t, err)
	assert.Len(t, embedding, DefaultEmbeddingDimensions)
}
