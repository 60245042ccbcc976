package ai

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/mindvault-app/mindvault/internal/domain"
)

const (
	// DefaultGeminiTextModel is the Gemini model used for text generation
	DefaultGeminiTextModel = "gemini-2.5-flash"
	// DefaultGeminiEmbeddingModel is the Gemini model used for embeddings
	DefaultGeminiEmbeddingModel = "gemini-embedding-001"
)

// GeminiAdapter implements GenerativeAPI and EmbeddingAPI on top of the
// Gemini API. Embeddings are requested at the fixed store dimensionality.
type GeminiAdapter struct {
	client     *genai.Client
	textModel  string
	embedModel string
}

// NewGeminiAdapter creates a GeminiAdapter using the given API key.
func NewGeminiAdapter(ctx context.Context, apiKey string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiAdapter{
		client:     client,
		textModel:  DefaultGeminiTextModel,
		embedModel: DefaultGeminiEmbeddingModel,
	}, nil
}

// GenerateText calls the Gemini API to generate a text response
func (a *GeminiAdapter) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("no text returned")
	}
	return text, nil
}

// CreateEmbedding calls the Gemini API to create an embedding
func (a *GeminiAdapter) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.Models.EmbedContent(ctx, a.embedModel, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(domain.EmbeddingDimensions)),
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Embeddings[0].Values, nil
}
