package service

import (
	"context"
	"fmt"
	"strings"
)

// ModelClient is the narrow AI surface enrichment depends on.
type ModelClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

const summarizePrompt = `You are a helpful assistant that creates concise summaries.
Summarize the following content in 2-3 sentences, capturing the key points:

%s

Respond with only the summary, no additional text.`

const autoTagPrompt = `You are a helpful assistant that generates relevant tags for knowledge management.
Based on the title and content below, suggest 3-5 relevant tags that would help categorize and find this content later.

Title: %s
Content: %s

Respond with only the tags as a comma-separated list (e.g., "javascript, web development, tutorial").
Use lowercase, keep tags concise (1-3 words each).`

const answerPrompt = `You are a helpful assistant that answers questions based on a user's personal knowledge base.
Use the following knowledge base entries to answer the question. If you cannot find relevant information, say so clearly.

Knowledge Base:
%s

Question: %s

Provide a clear, concise answer based on the knowledge base. If the answer comes from specific sources, mention which ones.`

// lowConfidencePhrases mark answers where the model reported it could not
// ground a response. The resulting confidence is a fixed two-valued signal,
// not a calibrated probability.
var lowConfidencePhrases = []string{"not find", "no information", "cannot answer"}

const (
	lowConfidence  = 0.3
	highConfidence = 0.85
)

// EnrichmentService wraps the model calls that decorate knowledge items:
// summaries, tags, embeddings, and grounded answers. Every operation makes
// exactly one model call; callers decide whether a failure is fatal.
type EnrichmentService struct {
	client ModelClient
}

// NewEnrichmentService creates an EnrichmentService.
func NewEnrichmentService(client ModelClient) *EnrichmentService {
	return &EnrichmentService{client: client}
}

// Summarize produces a 2-3 sentence summary of the content.
func (s *EnrichmentService) Summarize(ctx context.Context, content string) (string, error) {
	text, err := s.client.GenerateText(ctx, fmt.Sprintf(summarizePrompt, content))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// AutoTag suggests tags for the content. The raw comma-separated response is
// split, trimmed and lower-cased; deduplication against existing tags is the
// caller's job.
func (s *EnrichmentService) AutoTag(ctx context.Context, content, title string) ([]string, error) {
	text, err := s.client.GenerateText(ctx, fmt.Sprintf(autoTagPrompt, title, content))
	if err != nil {
		return nil, err
	}

	parts := strings.Split(strings.TrimSpace(text), ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// Embed generates the fixed-dimension vector for arbitrary text.
func (s *EnrichmentService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.client.GenerateEmbedding(ctx, text)
}

// EmbedItem generates the vector for a knowledge item from its title and
// content.
func (s *EnrichmentService) EmbedItem(ctx context.Context, title, content string) ([]float32, error) {
	return s.client.GenerateEmbedding(ctx, title+"\n\n"+content)
}

// Answer synthesizes a response to the question grounded in the given source
// items. Each source contributes its title plus summary (or raw content when
// no summary exists) to the context block.
func (s *EnrichmentService) Answer(ctx context.Context, question string, sources []*Candidate) (string, float64, error) {
	contextParts := make([]string, 0, len(sources))
	for i, item := range sources {
		body := item.Summary
		if body == "" {
			body = item.Content
		}
		contextParts = append(contextParts, fmt.Sprintf("[Source %d] %s\n%s", i+1, item.Title, body))
	}
	contextBlock := strings.Join(contextParts, "\n\n---\n\n")

	text, err := s.client.GenerateText(ctx, fmt.Sprintf(answerPrompt, contextBlock, question))
	if err != nil {
		return "", 0, err
	}

	answer := strings.TrimSpace(text)
	return answer, answerConfidence(answer), nil
}

func answerConfidence(answer string) float64 {
	lowered := strings.ToLower(answer)
	for _, phrase := range lowConfidencePhrases {
		if strings.Contains(lowered, phrase) {
			return lowConfidence
		}
	}
	return highConfidence
}
