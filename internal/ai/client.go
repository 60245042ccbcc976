// Package ai wraps the generative and embedding model providers behind
// narrow interfaces so services never touch a vendor SDK directly.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/mindvault-app/mindvault/internal/domain"
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrEmptyPrompt is returned when a generation prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrWrongDimensions is returned when an embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions, expected 384")
	// ErrNoAPIKey is returned when no provider API key is configured
	ErrNoAPIKey = errors.New("AI provider API key not set")
)

// GenerativeAPI defines the interface for text generation
type GenerativeAPI interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Client wraps a provider adapter and enforces the fixed embedding dimension.
type Client struct {
	gen        GenerativeAPI
	emb        EmbeddingAPI
	dimensions int
}

// NewClient creates a Client around provider adapters.
func NewClient(gen GenerativeAPI, emb EmbeddingAPI) *Client {
	return &Client{
		gen:        gen,
		emb:        emb,
		dimensions: domain.EmbeddingDimensions,
	}
}

// GenerateText sends a prompt to the generative model and returns the raw
// response text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	text, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	return text, nil
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.emb.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(embedding) != c.dimensions {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}
