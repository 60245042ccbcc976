package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mindvault-app/mindvault/internal/domain"
	"github.com/mindvault-app/mindvault/internal/telemetry"
)

// KnowledgeRepositoryInterface defines the repository surface for item persistence
type KnowledgeRepositoryInterface interface {
	Create(ctx context.Context, k *domain.KnowledgeItem) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error)
	List(ctx context.Context, input ListItemsInput) (*ListItemsOutput, error)
	Update(ctx context.Context, k *domain.KnowledgeItem) error
	Delete(ctx context.Context, id string) error
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
	SimilarByEmbedding(ctx context.Context, embedding []float32, limit int, excludeID string) ([]*SimilarItem, error)
}

// Enricher is the enrichment surface the knowledge service depends on.
type Enricher interface {
	Summarize(ctx context.Context, content string) (string, error)
	EmbedItem(ctx context.Context, title, content string) ([]float32, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// KnowledgeService handles business logic for knowledge items. Enrichment on
// create and update is best-effort: a failed summary or embedding never fails
// the structural operation, it is logged and the field left absent.
type KnowledgeService struct {
	repo     KnowledgeRepositoryInterface
	enricher Enricher
	uuidGen  UUIDGenerator
	logger   *slog.Logger
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(repo KnowledgeRepositoryInterface, enricher Enricher, logger *slog.Logger) *KnowledgeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &KnowledgeService{
		repo:     repo,
		enricher: enricher,
		uuidGen:  &DefaultUUIDGenerator{},
		logger:   logger,
	}
}

// NewKnowledgeServiceWithUUIDGen creates a KnowledgeService with a custom UUID generator (for testing)
func NewKnowledgeServiceWithUUIDGen(repo KnowledgeRepositoryInterface, enricher Enricher, logger *slog.Logger, uuidGen UUIDGenerator) *KnowledgeService {
	svc := NewKnowledgeService(repo, enricher, logger)
	svc.uuidGen = uuidGen
	return svc
}

// CreateInput represents the input for creating a knowledge item. Fields are
// already trimmed and normalized by the handler.
type CreateInput struct {
	Title     string
	Content   string
	Type      domain.ItemType
	Tags      []string
	SourceURL string
}

// UpdateInput represents a partial update. Nil pointers leave the field
// untouched.
type UpdateInput struct {
	ItemID    string
	Title     *string
	Content   *string
	Type      *domain.ItemType
	Tags      []string
	HasTags   bool
	SourceURL *string
	Summary   *string
}

// Create persists a new item. Summary and embedding are generated
// synchronously before the item is returned; either may be absent if the
// model call failed. The vector is stored in a second write after the row
// exists, since the structured insert cannot carry the vector column.
func (s *KnowledgeService) Create(ctx context.Context, input CreateInput) (*domain.KnowledgeItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Create", telemetry.SpanAttributes{
		Operation: "create",
	})
	defer span.End()

	now := time.Now().UTC()
	item := &domain.KnowledgeItem{
		ID:        s.uuidGen.NewString(),
		Title:     input.Title,
		Content:   input.Content,
		Type:      input.Type,
		Tags:      input.Tags,
		SourceURL: input.SourceURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if summary, err := s.enricher.Summarize(ctx, input.Content); err != nil {
		s.logger.Warn("failed to generate summary", "item_id", item.ID, "error", err)
	} else {
		item.Summary = summary
	}

	embedding, err := s.enricher.EmbedItem(ctx, input.Title, input.Content)
	if err != nil {
		s.logger.Warn("failed to generate embedding", "item_id", item.ID, "error", err)
		embedding = nil
	}

	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	if embedding != nil {
		if err := s.repo.UpdateEmbedding(ctx, item.ID, embedding); err != nil {
			return nil, err
		}
		item.Embedding = embedding
	}

	return item, nil
}

// GetByID retrieves a knowledge item by ID
func (s *KnowledgeService) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.GetByID", telemetry.SpanAttributes{
		ItemID:    id,
		Operation: "get",
	})
	defer span.End()

	return s.repo.GetByID(ctx, id)
}

// List returns a filtered, sorted page of items with total counts.
func (s *KnowledgeService) List(ctx context.Context, input ListItemsInput) (*ListItemsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.List", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	return s.repo.List(ctx, input)
}

// Update applies a partial update. The summary is regenerated only when
// content changed; the embedding only when title or content changed. Both
// regenerations are best-effort and overwrite the stored value only on
// success, so a structural update survives an enrichment outage.
func (s *KnowledgeService) Update(ctx context.Context, input UpdateInput) (*domain.KnowledgeItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Update", telemetry.SpanAttributes{
		ItemID:    input.ItemID,
		Operation: "update",
	})
	defer span.End()

	item, err := s.repo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if input.Title == nil && input.Content == nil && input.Type == nil && !input.HasTags && input.SourceURL == nil && input.Summary == nil {
		return nil, domain.ErrNoUpdatableFields
	}

	prevTitle := item.Title
	prevContent := item.Content

	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Content != nil {
		item.Content = *input.Content
	}
	if input.Type != nil {
		item.Type = *input.Type
	}
	if input.HasTags {
		item.Tags = input.Tags
	}
	if input.SourceURL != nil {
		item.SourceURL = *input.SourceURL
	}
	if input.Summary != nil {
		item.Summary = *input.Summary
	}

	contentChanged := item.Content != prevContent
	embeddingInputChanged := item.Title != prevTitle || contentChanged

	if contentChanged {
		if summary, err := s.enricher.Summarize(ctx, item.Content); err != nil {
			s.logger.Warn("failed to regenerate summary", "item_id", item.ID, "error", err)
		} else {
			item.Summary = summary
		}
	}

	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	if embeddingInputChanged {
		if embedding, err := s.enricher.EmbedItem(ctx, item.Title, item.Content); err != nil {
			s.logger.Warn("failed to regenerate embedding", "item_id", item.ID, "error", err)
		} else if err := s.repo.UpdateEmbedding(ctx, item.ID, embedding); err != nil {
			s.logger.Warn("failed to store regenerated embedding", "item_id", item.ID, "error", err)
		}
	}

	return item, nil
}

// Delete removes an item permanently.
func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Delete", telemetry.SpanAttributes{
		ItemID:    id,
		Operation: "delete",
	})
	defer span.End()

	return s.repo.Delete(ctx, id)
}

// Similar ranks other items by similarity to the given item. A fresh query
// vector is embedded from the item's current title and content; without it
// similarity search is impossible, so embedding failure here is fatal.
func (s *KnowledgeService) Similar(ctx context.Context, id string, limit int) ([]*SimilarItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Similar", telemetry.SpanAttributes{
		ItemID:    id,
		Operation: "similar",
	})
	defer span.End()

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	embedding, err := s.enricher.EmbedItem(ctx, item.Title, item.Content)
	if err != nil {
		s.logger.Error("failed to generate embedding for similarity search", "item_id", id, "error", err)
		span.SetError(err)
		return nil, domain.ErrEmbeddingFailed
	}

	return s.repo.SimilarByEmbedding(ctx, embedding, limit, id)
}
