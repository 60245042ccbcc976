package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault-app/mindvault/internal/domain"
)

type fakeProvider struct {
	text      string
	textErr   error
	embedding []float32
	embedErr  error
}

func (f *fakeProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.text, f.textErr
}

func (f *fakeProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return f.embedding, f.embedErr
}

func TestClient_GenerateText(t *testing.T) {
	t.Run("returns provider text", func(t *testing.T) {
		provider := &fakeProvider{text: "hello"}
		client := NewClient(provider, provider)

		text, err := client.GenerateText(context.Background(), "prompt")

		require.NoError(t, err)
		assert.Equal(t, "hello", text)
	})

	t.Run("empty prompt rejected", func(t *testing.T) {
		provider := &fakeProvider{}
		client := NewClient(provider, provider)

		_, err := client.GenerateText(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	})

	t.Run("provider error wrapped", func(t *testing.T) {
		provider := &fakeProvider{textErr: errors.New("quota exceeded")}
		client := NewClient(provider, provider)

		_, err := client.GenerateText(context.Background(), "prompt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}

func TestClient_GenerateEmbedding(t *testing.T) {
	t.Run("accepts the fixed dimension", func(t *testing.T) {
		provider := &fakeProvider{embedding: make([]float32, domain.EmbeddingDimensions)}
		client := NewClient(provider, provider)

		embedding, err := client.GenerateEmbedding(context.Background(), "text")

		require.NoError(t, err)
		assert.Len(t, embedding, domain.EmbeddingDimensions)
	})

	t.Run("rejects wrong dimensions", func(t *testing.T) {
		provider := &fakeProvider{embedding: make([]float32, 768)}
		client := NewClient(provider, provider)

		_, err := client.GenerateEmbedding(context.Background(), "text")
		assert.ErrorIs(t, err, ErrWrongDimensions)
	})

	t.Run("empty text rejected", func(t *testing.T) {
		provider := &fakeProvider{}
		client := NewClient(provider, provider)

		_, err := client.GenerateEmbedding(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})
}
