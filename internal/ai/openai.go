package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mindvault-app/mindvault/internal/domain"
)

const (
	// DefaultOpenAITextModel is the OpenAI model used for text generation
	DefaultOpenAITextModel = openai.GPT4oMini
	// DefaultOpenAIEmbeddingModel is the OpenAI model used for embeddings
	DefaultOpenAIEmbeddingModel = openai.SmallEmbedding3
)

// OpenAIAdapter implements GenerativeAPI and EmbeddingAPI on top of the
// OpenAI API. text-embedding-3-small supports shortened output vectors, so
// embeddings are requested at the fixed store dimensionality.
type OpenAIAdapter struct {
	client     *openai.Client
	textModel  string
	embedModel openai.EmbeddingModel
}

// NewOpenAIAdapter creates an OpenAIAdapter using the given API key.
func NewOpenAIAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	return &OpenAIAdapter{
		client:     openai.NewClient(apiKey),
		textModel:  DefaultOpenAITextModel,
		embedModel: DefaultOpenAIEmbeddingModel,
	}, nil
}

// GenerateText calls the OpenAI chat completions API to generate a text response
func (a *OpenAIAdapter) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// CreateEmbedding calls the OpenAI API to create an embedding
func (a *OpenAIAdapter) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      a.embedModel,
		Dimensions: domain.EmbeddingDimensions,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}
