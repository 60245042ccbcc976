package service

import (
	"context"
	"log/slog"

	"github.com/mindvault-app/mindvault/internal/domain"
	"github.com/mindvault-app/mindvault/internal/telemetry"
)

// ragCandidateLimit caps how many retrieved items ground an answer.
const ragCandidateLimit = 5

// QueryRepositoryInterface is the retrieval surface the query flow needs.
type QueryRepositoryInterface interface {
	NearestNeighbors(ctx context.Context, embedding []float32, limit int, excludeID string) ([]*Candidate, error)
	KeywordSearch(ctx context.Context, term string) ([]*Candidate, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.KnowledgeItem, error)
}

// Answerer is the synthesis surface the query flow needs.
type Answerer interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Answer(ctx context.Context, question string, sources []*Candidate) (string, float64, error)
}

// QueryOutput is the result of one retrieval-augmented query. Found is false
// when retrieval produced no candidates; in that case the generative model
// was never invoked, Sources is empty and Confidence is zero.
type QueryOutput struct {
	Answer     string
	Sources    []*domain.KnowledgeItem
	Confidence float64
	Found      bool
}

// QueryService orchestrates retrieval-augmented question answering: embed
// the question, retrieve nearest neighbors (falling back to keyword search
// when the embedding provider is down), then synthesize an answer grounded
// in the retrieved items.
type QueryService struct {
	repo     QueryRepositoryInterface
	answerer Answerer
	logger   *slog.Logger
}

// NewQueryService creates a QueryService.
func NewQueryService(repo QueryRepositoryInterface, answerer Answerer, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{
		repo:     repo,
		answerer: answerer,
		logger:   logger,
	}
}

// Query answers a natural-language question from the stored corpus.
//
// Embedding failure is non-fatal here: retrieval degrades to keyword search
// over the raw question text. With zero candidates from either path the flow
// short-circuits without a generative call, avoiding ungrounded answers.
func (s *QueryService) Query(ctx context.Context, question string) (*QueryOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "QueryService.Query", telemetry.SpanAttributes{
		Operation: "query",
	})
	defer span.End()

	var candidates []*Candidate

	embedding, err := s.answerer.Embed(ctx, question)
	if err != nil {
		s.logger.Warn("failed to embed question, falling back to keyword search", "error", err)
		embedding = nil
	}

	if embedding != nil {
		candidates, err = s.repo.NearestNeighbors(ctx, embedding, ragCandidateLimit, "")
	} else {
		candidates, err = s.repo.KeywordSearch(ctx, question)
	}
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return &QueryOutput{
			Sources: []*domain.KnowledgeItem{},
		}, nil
	}

	answer, confidence, err := s.answerer.Answer(ctx, question, candidates)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}

	sources, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &QueryOutput{
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence,
		Found:      true,
	}, nil
}
