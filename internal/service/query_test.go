package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mindvault-app/mindvault/internal/domain"
)

// MockQueryRepository is a mock implementation of QueryRepositoryInterface
type MockQueryRepository struct {
	mock.Mock
}

func (m *MockQueryRepository) NearestNeighbors(ctx context.Context, embedding []float32, limit int, excludeID string) ([]*Candidate, error) {
	args := m.Called(ctx, embedding, limit, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Candidate), args.Error(1)
}

func (m *MockQueryRepository) KeywordSearch(ctx context.Context, term string) ([]*Candidate, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Candidate), args.Error(1)
}

func (m *MockQueryRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.KnowledgeItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeItem), args.Error(1)
}

// MockAnswerer is a mock implementation of Answerer
type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockAnswerer) Answer(ctx context.Context, question string, sources []*Candidate) (string, float64, error) {
	args := m.Called(ctx, question, sources)
	return args.String(0), args.Get(1).(float64), args.Error(2)
}

func TestQueryService_Query(t *testing.T) {
	ctx := context.Background()

	candidates := []*Candidate{
		{ID: "item-1", Title: "Go Concurrency", Summary: "goroutines"},
		{ID: "item-2", Title: "Go Channels", Content: "channel basics"},
	}
	sources := []*domain.KnowledgeItem{
		{ID: "item-1", Title: "Go Concurrency"},
		{ID: "item-2", Title: "Go Channels"},
	}

	t.Run("answers from nearest neighbors", func(t *testing.T) {
		mockRepo := new(MockQueryRepository)
		mockAnswerer := new(MockAnswerer)
		svc := NewQueryService(mockRepo, mockAnswerer, nil)

		embedding := testEmbedding()
		mockAnswerer.On("Embed", mock.Anything, "how do goroutines work?").Return(embedding, nil)
		mockRepo.On("NearestNeighbors", mock.Anything, embedding, 5, "").Return(candidates, nil)
		mockAnswerer.On("Answer", mock.Anything, "how do goroutines work?", candidates).Return("Goroutines are lightweight threads.", 0.85, nil)
		mockRepo.On("GetByIDs", mock.Anything, []string{"item-1", "item-2"}).Return(sources, nil)

		output, err := svc.Query(ctx, "how do goroutines work?")

		require.NoError(t, err)
		assert.True(t, output.Found)
		assert.Equal(t, "Goroutines are lightweight threads.", output.Answer)
		assert.InDelta(t, 0.85, output.Confidence, 1e-9)
		assert.Len(t, output.Sources, 2)
		mockRepo.AssertExpectations(t)
		mockAnswerer.AssertExpectations(t)
	})

	t.Run("falls back to keyword search when embedding fails", func(t *testing.T) {
		mockRepo := new(MockQueryRepository)
		mockAnswerer := new(MockAnswerer)
		svc := NewQueryService(mockRepo, mockAnswerer, nil)

		mockAnswerer.On("Embed", mock.Anything, "goroutines").Return(nil, errors.New("model down"))
		mockRepo.On("KeywordSearch", mock.Anything, "goroutines").Return(candidates, nil)
		mockAnswerer.On("Answer", mock.Anything, "goroutines", candidates).Return("Some answer.", 0.85, nil)
		mockRepo.On("GetByIDs", mock.Anything, mock.Anything).Return(sources, nil)

		output, err := svc.Query(ctx, "goroutines")

		require.NoError(t, err)
		assert.True(t, output.Found)
		mockRepo.AssertNotCalled(t, "NearestNeighbors", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero candidates short-circuits without a generative call", func(t *testing.T) {
		mockRepo := new(MockQueryRepository)
		mockAnswerer := new(MockAnswerer)
		svc := NewQueryService(mockRepo, mockAnswerer, nil)

		mockAnswerer.On("Embed", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
		mockRepo.On("NearestNeighbors", mock.Anything, mock.Anything, 5, "").Return([]*Candidate{}, nil)

		output, err := svc.Query(ctx, "anything in here?")

		require.NoError(t, err)
		assert.False(t, output.Found)
		assert.Empty(t, output.Answer)
		assert.Zero(t, output.Confidence)
		assert.NotNil(t, output.Sources)
		assert.Empty(t, output.Sources)
		mockAnswerer.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("answer failure surfaces the error", func(t *testing.T) {
		mockRepo := new(MockQueryRepository)
		mockAnswerer := new(MockAnswerer)
		svc := NewQueryService(mockRepo, mockAnswerer, nil)

		mockAnswerer.On("Embed", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
		mockRepo.On("NearestNeighbors", mock.Anything, mock.Anything, 5, "").Return(candidates, nil)
		mockAnswerer.On("Answer", mock.Anything, mock.Anything, mock.Anything).Return("", 0.0, errors.New("model down"))

		output, err := svc.Query(ctx, "question")

		require.Error(t, err)
		assert.Nil(t, output)
	})
}
